package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/chrdb/chrdb"

	"github.com/spf13/viper"
)

// Config stores all configuration of the build pipeline.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Build   BuildConfig   `mapstructure:"build"`
	Sources SourcesConfig `mapstructure:"sources"`
	Store   StoreConfig   `mapstructure:"store"`
	Package PackageConfig `mapstructure:"package"`
	Log     LogConfig     `mapstructure:"log"`
}

// BuildConfig stores the working directories of a build.
type BuildConfig struct {
	CacheDir  string `mapstructure:"cacheDir"`
	OutputDir string `mapstructure:"outputDir"`
}

// SourcesConfig stores the remote base URLs the source files are fetched from.
type SourcesConfig struct {
	UCDBaseURL      string `mapstructure:"ucdBaseURL"`
	EntitiesBaseURL string `mapstructure:"entitiesBaseURL"`
}

// StoreConfig stores the keyed store settings.
type StoreConfig struct {
	FileName string `mapstructure:"fileName"`
}

// PackageConfig stores the archive settings.
type PackageConfig struct {
	FileName string `mapstructure:"fileName"`
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix is prepended to every environment override, e.g.
// CHRDB_BUILD_CACHEDIR overrides build.cacheDir.
const EnvPrefix = "CHRDB"

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("build.cacheDir", internal.DefaultCacheDir)
	v.SetDefault("build.outputDir", internal.DefaultOutputDir)
	v.SetDefault("sources.ucdBaseURL", internal.DefaultUCDBaseURL)
	v.SetDefault("sources.entitiesBaseURL", internal.DefaultEntitiesBaseURL)
	v.SetDefault("store.fileName", internal.DatabaseFileName)
	v.SetDefault("package.fileName", internal.ArchiveFileName)
	v.SetDefault("log.level", internal.DefaultLogLevel)
	v.SetDefault("log.format", internal.DefaultLogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // build.cacheDir -> CHRDB_BUILD_CACHEDIR

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	required := map[string]string{
		"build.cacheDir":          c.Build.CacheDir,
		"build.outputDir":         c.Build.OutputDir,
		"sources.ucdBaseURL":      c.Sources.UCDBaseURL,
		"sources.entitiesBaseURL": c.Sources.EntitiesBaseURL,
		"store.fileName":          c.Store.FileName,
		"package.fileName":        c.Package.FileName,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config %s cannot be empty", key)
		}
	}
	if filepath.Base(c.Store.FileName) != c.Store.FileName {
		return fmt.Errorf("config store.fileName must be a bare file name, got %q", c.Store.FileName)
	}
	return nil
}

// StorePath is the location of the store file inside the output directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.Build.OutputDir, c.Store.FileName)
}

// ArchivePath is the location of the packaged archive inside the output directory.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Build.OutputDir, c.Package.FileName)
}
