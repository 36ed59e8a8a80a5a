package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read after .env loading.
const (
	EnvDB      = "EXAMDASH_DB"
	EnvStudent = "EXAMDASH_STUDENT"
	EnvLog     = "EXAMDASH_LOG"
)

// Env holds settings taken from the process environment.
type Env struct {
	DB      string
	Student string
	Log     string
}

// LoadEnv loads a .env file from the working directory when present and reads
// the EXAMDASH_* variables. Existing environment values win over the file.
func LoadEnv() Env {
	_ = godotenv.Load()
	return ReadEnv()
}

// ReadEnv reads the EXAMDASH_* variables without touching .env.
func ReadEnv() Env {
	return Env{
		DB:      strings.TrimSpace(os.Getenv(EnvDB)),
		Student: strings.TrimSpace(os.Getenv(EnvStudent)),
		Log:     strings.TrimSpace(os.Getenv(EnvLog)),
	}
}
