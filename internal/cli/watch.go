package cli

import (
	"fmt"
	"time"

	"pix_checkout/internal/adapter/client"
	"pix_checkout/internal/poller"

	"github.com/spf13/cobra"
)

type pollFlags struct {
	interval    time.Duration
	maxDuration time.Duration
}

func (f *pollFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.interval, "interval", poller.DefaultInterval, "Time between status checks")
	cmd.Flags().DurationVar(&f.maxDuration, "max-duration", poller.DefaultMaxDuration, "Give up when the payment is not confirmed within this time")
}

func (a *app) watchCmd() *cobra.Command {
	var (
		f      pollFlags
		stream bool
	)
	cmd := &cobra.Command{
		Use:   "watch <payment-id>",
		Short: "Wait until a payment is confirmed",
		Long: `Polls the payment status until it is approved. Exits non-zero when the
payment is not confirmed within --max-duration.

With --stream the server runs the poll and streams its progress; the
server's poll settings apply and the local timing flags are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			progress := &progressPrinter{w: out}
			api := a.client()

			var outcome poller.Outcome
			if stream {
				var err error
				outcome, err = api.WatchPayment(cmd.Context(), args[0], func(ev client.Event) {
					switch ev.Name {
					case "check":
						if ev.Check.Error != "" {
							fmt.Fprintf(out, "check #%d: error: %s\n", ev.Check.Attempt, ev.Check.Error)
							return
						}
						fmt.Fprintf(out, "check #%d: %s\n", ev.Check.Attempt, ev.Check.Status)
					case "skipped":
						progress.CheckSkipped(args[0], ev.Skipped.Attempt)
					}
				})
				if err != nil {
					return err
				}
			} else {
				session, err := poller.New(args[0], poller.CheckerFunc(api.CheckPayment), nil,
					poller.WithInterval(f.interval),
					poller.WithMaxDuration(f.maxDuration),
					poller.WithObserver(progress),
					poller.WithLogger(a.logger()),
				)
				if err != nil {
					return err
				}
				if err := session.Start(cmd.Context()); err != nil {
					return err
				}
				<-session.Done()
				outcome, _ = session.Outcome()
			}

			return outcomeError(outcome)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&stream, "stream", false, "Follow the server-side confirmation stream instead of polling locally")
	return cmd
}

func outcomeError(outcome poller.Outcome) error {
	switch outcome {
	case poller.OutcomeApproved:
		return nil
	case poller.OutcomeTimedOut:
		return ErrPaymentExpired
	default:
		return ErrCheckoutCanceled
	}
}
