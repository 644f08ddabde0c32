package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baserah/letters/pkg/config"
	"github.com/baserah/letters/pkg/db"
	"github.com/baserah/letters/pkg/letters"
)

func mergeCmd(a *app) *cobra.Command {
	def := config.Default().Merge
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge supplementary meanings into the letter store",
		Long: `Merge supplementary meanings into the letter store.

For every letter present in both documents, each supplement meaning is appended
to the record's developer_meanings unless an existing meaning already contains
it (or equals it with --dedup exact). Touched records get a fresh last_updated
and updated_by. Letters missing from the base store are skipped unless
--on-missing create is given. The store version is bumped one minor step.

Use --dry-run to print the statistics without writing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd, a, dryRun)
		},
	}

	cmd.Flags().String("base", def.BasePath, "Base letter store")
	cmd.Flags().String("supplement", def.SupplementPath, "Supplement with candidate meanings")
	cmd.Flags().String("out", def.OutputPath, "Output path for the merged store")
	cmd.Flags().String("dedup", def.Dedup, "Duplicate policy: substring or exact")
	cmd.Flags().String("on-missing", def.OnMissingLetter, "Letters absent from the base: skip or create")
	cmd.Flags().String("archive-db", "", "Also archive the merged store in this SQLite database")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")

	return cmd
}

func runMerge(cmd *cobra.Command, a *app, dryRun bool) error {
	mc := a.cfg.Merge
	basePath := stringFlag(cmd, "base", mc.BasePath)
	suppPath := stringFlag(cmd, "supplement", mc.SupplementPath)
	outPath := stringFlag(cmd, "out", mc.OutputPath)
	archivePath := stringFlag(cmd, "archive-db", a.cfg.Archive.DBPath)

	opts := letters.MergeOptions{
		Dedup:           letters.DedupPolicy(stringFlag(cmd, "dedup", mc.Dedup)),
		OnMissingLetter: letters.MissingLetterPolicy(stringFlag(cmd, "on-missing", mc.OnMissingLetter)),
		UpdatedBy:       mc.UpdatedBy,
		Notes:           mc.Notes,
		Logger:          a.logger,
	}

	a.logger.Info("loading base store", map[string]interface{}{"path": basePath})
	base, err := letters.LoadStore(basePath)
	if err != nil {
		return err
	}
	a.logger.Info("loading supplement", map[string]interface{}{"path": suppPath})
	supp, err := letters.LoadSupplement(suppPath)
	if err != nil {
		return err
	}

	merged, stats, err := letters.Merge(base, supp, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printMergeStats(out, stats)
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing written")
		return nil
	}

	if err := letters.SaveStore(outPath, merged); err != nil {
		return fmt.Errorf("save merged store: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s (%d letters, version %s)\n", outPath, merged.Metadata.LettersCount, merged.Metadata.Version)

	if archivePath != "" {
		id, err := archiveStore(archivePath, "merge "+suppPath, merged)
		if err != nil {
			return fmt.Errorf("%s was written but not archived: %w", outPath, err)
		}
		fmt.Fprintf(out, "Archived snapshot %d in %s\n", id, archivePath)
	}
	return nil
}

func printMergeStats(w io.Writer, s letters.MergeStats) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Merge statistics")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Letters scanned:          %d\n", s.LettersScanned)
	fmt.Fprintf(w, "Letters updated:          %d\n", s.LettersUpdated)
	fmt.Fprintf(w, "Letters created:          %d\n", s.LettersCreated)
	fmt.Fprintf(w, "New meanings added:       %d\n", s.MeaningsAdded)
	fmt.Fprintf(w, "Meanings already present: %d\n", s.MeaningsSkipped)
	if len(s.SkippedLetters) > 0 {
		fmt.Fprintf(w, "Letters not in base:      %d (%s)\n", len(s.SkippedLetters), strings.Join(s.SkippedLetters, " "))
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func archiveStore(path, label string, s *letters.Store) (int64, error) {
	conn, err := db.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer conn.Close()
	id, err := db.SaveSnapshot(conn, label, s)
	if err != nil {
		return 0, fmt.Errorf("archive snapshot: %w", err)
	}
	return id, nil
}
