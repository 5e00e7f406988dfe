package config

const (
	DefaultListenAddr  = ":8000"
	DefaultRootDir     = "."
	DefaultSecretsFile = ".env"
)
