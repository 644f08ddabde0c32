package commands

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baserah/letters/pkg/codegen"
	"github.com/baserah/letters/pkg/config"
	"github.com/baserah/letters/pkg/letters"
)

// previewLines is how much of the generated code is echoed.
const previewLines = 20

func codegenCmd(a *app) *cobra.Command {
	def := config.Default().Codegen

	cmd := &cobra.Command{
		Use:   "codegen",
		Short: "Generate the TypeScript letter engine initializer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := a.cfg.Codegen
			inPath := stringFlag(cmd, "in", cc.InputPath)
			outPath := stringFlag(cmd, "out", cc.OutputPath)

			s, err := letters.LoadStore(inPath)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			n, err := codegen.Render(&buf, s, nil)
			if err != nil {
				return err
			}
			err = letters.WriteAtomic(outPath, func(w io.Writer) error {
				_, err := w.Write(buf.Bytes())
				return err
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			a.logger.Info("initializer generated", map[string]interface{}{"path": outPath, "lines": n})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d lines)\n", outPath, n)
			lines := strings.Split(buf.String(), "\n")
			if len(lines) > previewLines {
				lines = append(lines[:previewLines], "...")
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().String("in", def.InputPath, "Letter store to render")
	cmd.Flags().String("out", def.OutputPath, "TypeScript output file")
	return cmd
}
