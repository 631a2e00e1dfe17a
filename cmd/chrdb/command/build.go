package command

import (
	"fmt"

	"github.com/ZanzyTHEbar/chrdb/chrdb/pipeline"

	"github.com/spf13/cobra"
)

var Build = &cobra.Command{
	Use:   "build",
	Short: "Fetches missing sources and builds the store and its archive.",
	Args:  cobra.NoArgs,
	RunE:  commandBuild,
}

func commandBuild(cmd *cobra.Command, args []string) error {
	report, err := pipeline.New(cfg, logger).Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records, %d inserted\n%s\n",
		report.BuildID, report.Records, report.Inserted, report.ArchivePath)
	return nil
}

func init() {
	Root.AddCommand(Build)
}
