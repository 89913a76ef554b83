package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"reportd/internal/services"
	"reportd/pkg/contracts/domain"
)

func exportCmd() *cobra.Command {
	var (
		kind, format, from, to string
		output                 string
		toDir                  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a report for one entity kind",
		Example: `  reportctl export --kind transaction --format tabular --from 2024-01-01 --to 2024-01-31
  reportctl export --kind person --format workbook --dir -o ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.ExportService) error {
				result, err := svc.Export(cmd.Context(), kind, format, from, to)
				if err != nil {
					return err
				}

				path := output
				if toDir {
					path = joinPath(output, result.Filename)
				}

				w, err := openOutput(cmd, path)
				if err != nil {
					return err
				}
				if _, err := w.Write(result.Bytes); err != nil {
					w.Close()
					return fmt.Errorf("write export: %w", err)
				}
				if err := w.Close(); err != nil {
					return err
				}

				if path != "" && path != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d records, %d bytes)\n",
						path, result.RecordCount, len(result.Bytes))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "entity kind: person, sponsor or transaction")
	cmd.Flags().StringVarP(&format, "format", "f", "tabular", "output format: tabular, document or workbook")
	cmd.Flags().StringVar(&from, "from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "out", "o", "-", "output file, or directory with --dir")
	cmd.Flags().BoolVar(&toDir, "dir", false, "treat --out as a directory and use the generated filename")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeValues(domain.EntityKinds))
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(domain.OutputFormats))

	return cmd
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "-" {
		return name
	}
	return filepath.Join(dir, name)
}
