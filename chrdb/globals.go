package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for the config directory and env prefix lookups
	DefaultAppName        = "chrdb"
	DefaultAppCMDShortCut = "chrdb"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultCacheDir       = filepath.Join(DefaultConfigPath, ".cache")
	DefaultOutputDir      = "."

	// Source locations
	DefaultUCDBaseURL      = "http://ftp.unicode.org/Public/13.0.0/ucd"
	DefaultEntitiesBaseURL = "http://html.spec.whatwg.org"

	// Source and artifact file names
	BlocksFileName       = "Blocks.txt"
	DerivedAgeFileName   = "DerivedAge.txt"
	UnicodeDataFileName  = "UnicodeData.txt"
	HTMLEntitiesFileName = "entities.json"
	DatabaseFileName     = "chr.db"
	ArchiveFileName      = DatabaseFileName + ".zip"

	// Default logger settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return NewLogger(DefaultLogLevel, DefaultLogFormat)
}

// NewLogger builds a stderr logger for the given level ("debug", "info", "warn",
// "error") and format ("json" or "console"). Unknown levels fall back to info.
func NewLogger(level, format string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if strings.ToLower(format) != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
