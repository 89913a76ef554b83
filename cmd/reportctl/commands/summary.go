package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"reportd/internal/services"
	"reportd/pkg/contracts/domain"
)

func summaryCmd() *cobra.Command {
	var kind, from, to string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the aggregate summary of an entity kind as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc *services.ExportService) error {
				summary, err := svc.Summary(cmd.Context(), kind, from, to)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "entity kind: person, sponsor or transaction")
	cmd.Flags().StringVar(&from, "from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day included (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeValues(domain.EntityKinds))

	return cmd
}
