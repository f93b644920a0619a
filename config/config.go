/*
config.go - Server configuration

PURPOSE:
  Loads server settings from the environment, with an optional .env file
  for local development. Flags in cmd/server/main.go override these.

VARIABLES:
  PORT         HTTP server port (default: 8080)
  DATABASE     SQLite database path (default: absence.db, ":memory:" works)
  LOG_LEVEL    logrus level: debug, info, warn, error (default: info)

SEE ALSO:
  - cmd/server/main.go: Flag overrides and startup
*/
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server needs to start.
type Config struct {
	Port     int
	Database string
	LogLevel logrus.Level
}

// Load reads the optional .env file and the environment. A missing .env is
// not an error; a malformed LOG_LEVEL falls back to info.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not load .env file")
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	return Config{
		Port:     getEnvAsInt("PORT", 8080),
		Database: getEnv("DATABASE", "absence.db"),
		LogLevel: level,
	}
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}
