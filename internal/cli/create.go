package cli

import (
	"pix_checkout/internal/domain/entities"

	"github.com/spf13/cobra"
)

type intentFlags struct {
	title    string
	price    float64
	quantity int
	qrOut    string
}

func (f *intentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Item description shown to the payer")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Unit price in BRL")
	cmd.Flags().IntVar(&f.quantity, "quantity", 1, "Number of units")
	cmd.Flags().StringVar(&f.qrOut, "qr-out", "", "Write the QR code PNG to this file")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("price")
}

func (f *intentFlags) intent() (entities.PaymentIntent, error) {
	return entities.NewPaymentIntent(f.title, f.price, f.quantity)
}

func (a *app) createCmd() *cobra.Command {
	var f intentFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a PIX payment and print its QR data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := f.intent()
			if err != nil {
				return err
			}
			charge, err := a.client().CreatePixPayment(cmd.Context(), intent)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printCharge(out, charge)
			return writeQRImage(out, charge, f.qrOut)
		},
	}
	f.register(cmd)
	return cmd
}
