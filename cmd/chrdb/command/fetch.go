package command

import (
	"github.com/ZanzyTHEbar/chrdb/chrdb/pipeline"

	"github.com/spf13/cobra"
)

var Fetch = &cobra.Command{
	Use:   "fetch",
	Short: "Downloads the source files that are not cached yet.",
	Args:  cobra.NoArgs,
	RunE:  commandFetch,
}

func commandFetch(cmd *cobra.Command, args []string) error {
	n, err := pipeline.New(cfg, logger).Fetch(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info().Int("downloaded", n).Str("cache_dir", cfg.Build.CacheDir).Msg("sources ready")
	return nil
}

func init() {
	Root.AddCommand(Fetch)
}
