// Package config exposes build identity and process-level configuration for
// the schooldesk panel. Values come from environment variables, optionally
// overridden by a TOML file pointed to by SCHOOLDESK_CONFIG.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// fileConfig mirrors the keys accepted in the optional TOML config file.
type fileConfig struct {
	LogLevel  string `toml:"log_level"`
	DBFolder  string `toml:"db_folder"`
	LogFolder string `toml:"log_folder"`
}

var fileCfg fileConfig

// LoadFile reads a TOML config file into the package overrides. Missing file
// is not an error so deployments without one keep env-only behavior.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, &fileCfg)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("SCHOOLDESK_LOG_LEVEL")
	if logLevel == "" {
		logLevel = fileCfg.LogLevel
	}
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("SCHOOLDESK_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("SCHOOLDESK_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = fileCfg.DBFolder
	}
	if dbFolderPath == "" {
		dbFolderPath = "/etc/schooldesk"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("SCHOOLDESK_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = fileCfg.LogFolder
	}
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}
