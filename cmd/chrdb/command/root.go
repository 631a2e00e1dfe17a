package command

import (
	internal "github.com/ZanzyTHEbar/chrdb/chrdb"
	"github.com/ZanzyTHEbar/chrdb/chrdb/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configPath string
	cacheDir   string
	outDir     string
	logLevel   string

	cfg    *config.Config
	logger = internal.GetLogger()

	Root = &cobra.Command{
		Use:           internal.DefaultAppCMDShortCut,
		Short:         "Builds the Unicode character database used for offline lookups.",
		Long:          "chrdb downloads the Unicode Character Database and the WHATWG entity list, merges them into one row per code point and packages the result as a zipped SQLite store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			applyFlagOverrides(cmd.Flags(), loaded)
			cfg = loaded
			logger = internal.NewLogger(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
)

// applyFlagOverrides copies explicitly set persistent flags over the loaded
// configuration; flags win over file and environment values.
func applyFlagOverrides(flags *pflag.FlagSet, c *config.Config) {
	if flags.Changed("cache-dir") {
		c.Build.CacheDir = cacheDir
	}
	if flags.Changed("out-dir") {
		c.Build.OutputDir = outDir
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
}

// Logger returns the logger configured for the running command.
func Logger() zerolog.Logger {
	return logger
}

func init() {
	Root.PersistentFlags().StringVar(&configPath, "config", configPath,
		"path to a config file (default: search ., .., etc/chrdb and ~/.config/chrdb)")
	Root.PersistentFlags().StringVar(&cacheDir, "cache-dir", cacheDir,
		"directory the source files are downloaded to (overrides build.cacheDir)")
	Root.PersistentFlags().StringVar(&outDir, "out-dir", outDir,
		"directory the store and archive are written to (overrides build.outputDir)")
	Root.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		"log level: debug, info, warn or error (overrides log.level)")
}
