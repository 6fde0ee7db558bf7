package config

type SecurityConfig interface {
	GetEncryptCache() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetEncryptCache reports whether persisted sessions are sealed with a key derived from the app secret.
func (Security) GetEncryptCache() bool {
	return GetEnv(encryptCacheVar, "true") != "false"
}
