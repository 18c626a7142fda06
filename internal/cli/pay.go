package cli

import (
	"context"
	"fmt"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/poller"
	"pix_checkout/internal/usecase"

	"github.com/spf13/cobra"
)

func (a *app) payCmd() *cobra.Command {
	var (
		f  intentFlags
		pf pollFlags
	)
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Run a full checkout: create the payment, show the QR code and wait for confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := f.intent()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logger := a.logger()

			watcher := poller.NewWatcher(
				poller.WithInterval(pf.interval),
				poller.WithMaxDuration(pf.maxDuration),
				poller.WithObserver(&progressPrinter{w: out}),
				poller.WithLogger(logger),
			)
			checkout := usecase.NewCheckoutUseCase(a.client(), watcher, logger)

			fmt.Fprintf(out, "state: %s\n", entities.CheckoutLoading)
			charge, err := checkout.Start(cmd.Context(), intent)
			if err != nil {
				fmt.Fprintf(out, "state: %s\n", checkout.State())
				return fmt.Errorf("could not create the PIX payment: %w", err)
			}
			fmt.Fprintf(out, "state: %s\n", checkout.State())
			printCharge(out, charge)
			if err := writeQRImage(out, charge, f.qrOut); err != nil {
				checkout.Cancel()
				return err
			}

			state, err := checkout.Wait(cmd.Context())
			if err != nil {
				checkout.Cancel()
				fmt.Fprintf(out, "state: %s\n", checkout.State())
				return ErrCheckoutCanceled
			}
			fmt.Fprintf(out, "state: %s\n", state)

			switch state {
			case entities.CheckoutConfirmed:
				fmt.Fprintln(out, "Payment confirmed.")
				return nil
			case entities.CheckoutExpired:
				return ErrPaymentExpired
			default:
				return ErrCheckoutCanceled
			}
		},
	}
	f.register(cmd)
	pf.register(cmd)
	return cmd
}

// Execute runs pixctl with ctx, which cancels any running checkout when done.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
