package command

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/ZanzyTHEbar/chrdb/chrdb/db"
	"github.com/ZanzyTHEbar/chrdb/chrdb/pack"
	"github.com/ZanzyTHEbar/chrdb/chrdb/ucd"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	inspectName  string
	inspectStore string

	Inspect = &cobra.Command{
		Use:   "inspect [--name fragment] [chars...]",
		Short: "Looks up characters in a built store.",
		Long: `Looks up characters in a built store or archive.

Each argument is either a code point written as U+XXXX or literal text, in
which case every character of the text is looked up. --name searches the
character names instead.`,
		Example: `chrdb inspect 'Ä!'
chrdb inspect U+1F600
chrdb inspect --name "vulgar fraction"`,
		RunE: commandInspect,
	}
)

func commandInspect(cmd *cobra.Command, args []string) error {
	if inspectName == "" && len(args) == 0 {
		return errors.New("nothing to look up: pass characters or --name")
	}

	codepoints, err := parseTargets(args)
	if err != nil {
		return err
	}

	path, cleanup, err := resolveStore(inspectStore)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := db.Open(path, db.WithLogger(logger))
	if err != nil {
		return err
	}
	defer store.Close()

	var records []ucd.CharRecord
	if len(codepoints) > 0 {
		found, err := store.LookupCodepoints(cmd.Context(), codepoints)
		if err != nil {
			return err
		}
		records = append(records, found...)
	}
	if inspectName != "" {
		found, err := store.SearchName(cmd.Context(), inspectName)
		if err != nil {
			return err
		}
		records = append(records, found...)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matching characters")
		return nil
	}
	renderRecords(cmd, records)
	return nil
}

// parseTargets turns U+XXXX arguments into code points and splits any other
// argument into its characters.
func parseTargets(args []string) ([]uint32, error) {
	var out []uint32
	for _, arg := range args {
		if hex, ok := strings.CutPrefix(strings.ToUpper(arg), "U+"); ok {
			cp, err := ucd.ParseCodepoint(hex)
			if err != nil {
				return nil, fmt.Errorf("invalid code point %q: %w", arg, err)
			}
			out = append(out, cp)
			continue
		}
		for _, r := range arg {
			out = append(out, uint32(r))
		}
	}
	return out, nil
}

// resolveStore finds the store to open. An explicit path ending in .zip, or
// the configured archive when the store itself is missing, is unpacked into a
// temporary directory that cleanup removes.
func resolveStore(explicit string) (string, func(), error) {
	noop := func() {}

	candidate := explicit
	if candidate == "" {
		candidate = cfg.StorePath()
		if _, err := os.Stat(candidate); err != nil {
			candidate = cfg.ArchivePath()
		}
	}

	if _, err := os.Stat(candidate); err != nil {
		return "", noop, fmt.Errorf("no store found at %s; run %s build first", candidate, Root.Name())
	}
	if !strings.HasSuffix(strings.ToLower(candidate), ".zip") {
		return candidate, noop, nil
	}

	tmp, err := os.MkdirTemp("", "chrdb-inspect-*")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { os.RemoveAll(tmp) }

	path, err := pack.Unpack(candidate, tmp)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	logger.Debug().Str("archive", candidate).Str("store", path).Msg("archive unpacked")
	return path, cleanup, nil
}

func renderRecords(cmd *cobra.Command, records []ucd.CharRecord) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Codepoint", "Char", "Name", "Category", "Block", "Age", "Entity"})
	table.SetAutoWrapText(false)
	for _, rec := range records {
		entity := ""
		if rec.HTMLEntity != nil {
			entity = *rec.HTMLEntity
		}
		table.Append([]string{
			fmt.Sprintf("U+%04X", rec.Codepoint),
			printable(rec.Codepoint),
			rec.Name,
			rec.Category.Description(),
			rec.Block,
			rec.Age,
			entity,
		})
	}
	table.Render()
}

func printable(cp uint32) string {
	r := rune(cp)
	if !unicode.IsPrint(r) || unicode.Is(unicode.Mn, r) {
		return ""
	}
	return string(r)
}

func init() {
	Inspect.Flags().StringVar(&inspectName, "name", inspectName, "search character names containing this fragment")
	Inspect.Flags().StringVar(&inspectStore, "store", inspectStore, "store or .zip archive to read (default: the configured output)")

	Root.AddCommand(Inspect)
}
