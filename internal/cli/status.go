package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <payment-id>",
		Short: "Show the current status of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := a.client().GetPayment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Payment:   %s\n", check.ID)
			fmt.Fprintf(out, "Status:    %s\n", check.Status)
			if check.ProviderStatus != "" {
				fmt.Fprintf(out, "Provider:  %s (%s)\n", check.ProviderStatus, check.StatusDetail)
			}
			return nil
		},
	}
}
