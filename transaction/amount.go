package transaction

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	sdkerrors "github.com/jrsteele09/go-venmo-sdk/internal/errors"
)

// Amount is a money value in minor units (cents). On the wire it is a decimal
// number with at most two significant fraction digits, e.g. 12.50.
type Amount int64

// ParseAmount reads a decimal amount such as "12.5" or "-0.07" exactly.
func ParseAmount(s string) (Amount, error) {
	raw := strings.TrimSpace(s)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "-"), "+")

	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" || strings.Trim(whole+frac, "0123456789") != "" {
		return 0, fmt.Errorf("%w: amount %q", sdkerrors.ErrInvalidTransaction, s)
	}
	if len(frac) > 2 {
		if strings.Trim(frac[2:], "0") != "" {
			return 0, fmt.Errorf("%w: amount %q has sub-cent digits", sdkerrors.ErrInvalidTransaction, s)
		}
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("%w: amount %q out of range", sdkerrors.ErrInvalidTransaction, s)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	minor := units*100 + cents
	if neg {
		minor = -minor
	}
	return Amount(minor), nil
}

func (a Amount) String() string {
	if a < 0 {
		return "-" + FormatAmount(uint64(-a))
	}
	return FormatAmount(uint64(a))
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	parsed, err := ParseAmount(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
