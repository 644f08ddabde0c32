package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baserah/letters/pkg/letters"
)

func validateCmd(a *app) *cobra.Command {
	var in string
	var supplement, strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a letter store or supplement without changing it",
		Long: `Check a letter store or supplement without changing it.

Stores are checked against the store schema, letters_count is compared with
the number of letters, and letter keys are checked for Unicode normalization
problems. Use --supplement to check a supplement document instead. With
--strict any warning fails the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			out := cmd.OutOrStdout()

			if supplement {
				s, err := letters.DecodeSupplement(in, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: valid supplement, %d letters\n", in, len(s.Letters))
				return nil
			}

			s, err := letters.DecodeStore(in, data)
			if err != nil {
				return err
			}
			warnings := 0
			if s.Metadata.LettersCount != len(s.Letters) {
				warnings++
				fmt.Fprintf(out, "warning: letters_count is %d but the store has %d letters\n", s.Metadata.LettersCount, len(s.Letters))
			}
			for _, issue := range letters.CheckLetterKeys(s) {
				warnings++
				fmt.Fprintf(out, "warning: %q: %s\n", issue.Letter, issue.Problem)
			}
			a.logger.Debug("store validated", map[string]interface{}{"path": in, "warnings": warnings})
			fmt.Fprintf(out, "%s: valid store, %d letters, %d warnings\n", in, len(s.Letters), warnings)
			if strict && warnings > 0 {
				return fmt.Errorf("%d warnings in %s", warnings, in)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "unified_letters_database_complete.json", "Document to check")
	cmd.Flags().BoolVar(&supplement, "supplement", false, "Treat the document as a supplement")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings")
	return cmd
}
