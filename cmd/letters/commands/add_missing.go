package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baserah/letters/pkg/config"
	"github.com/baserah/letters/pkg/letters"
)

func addMissingCmd(a *app) *cobra.Command {
	def := config.Default().AddMissing

	cmd := &cobra.Command{
		Use:   "add-missing",
		Short: "Add the hamza and madda alif records if the store lacks them",
		Long: `Add the built-in records for ء (hamza) and آ (madda alif) to the store.

Letters that already exist are left untouched. letters_count and last_updated
are refreshed and the version is bumped one minor step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ac := a.cfg.AddMissing
			inPath := stringFlag(cmd, "in", ac.InputPath)
			outPath := stringFlag(cmd, "out", ac.OutputPath)

			s, err := letters.LoadStore(inPath)
			if err != nil {
				return err
			}
			seeds, err := letters.SeedRecords()
			if err != nil {
				return err
			}
			updated, added, err := letters.AddLetters(s, seeds, letters.AddOptions{
				UpdatedBy: a.cfg.Merge.UpdatedBy,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}
			if err := letters.SaveStore(outPath, updated); err != nil {
				return fmt.Errorf("save store: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(added) == 0 {
				fmt.Fprintln(out, "No letters missing")
			} else {
				fmt.Fprintf(out, "Added %s\n", strings.Join(added, " "))
			}
			fmt.Fprintf(out, "Total letters: %d\n", updated.Metadata.LettersCount)
			fmt.Fprintf(out, "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().String("in", def.InputPath, "Letter store to complete")
	cmd.Flags().String("out", def.OutputPath, "Output path")
	return cmd
}
