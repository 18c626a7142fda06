package cli

import (
	"errors"
	"strings"
	"time"

	"pix_checkout/internal/adapter/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultAPIURL         = "http://localhost:8080"
	defaultRequestTimeout = 15 * time.Second
)

var (
	ErrPaymentExpired   = errors.New("payment was not confirmed in time")
	ErrCheckoutCanceled = errors.New("checkout canceled")
)

// app carries what every subcommand needs.
type app struct {
	v *viper.Viper
}

func (a *app) client() *client.PixAPIClient {
	timeout := a.v.GetDuration("request_timeout")
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return client.NewPixAPIClient(a.v.GetString("api_url"), timeout, client.WithPayerEmail(a.v.GetString("payer_email")))
}

func (a *app) logger() *zap.Logger {
	if !a.v.GetBool("verbose") {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// NewRootCmd builds pixctl. Flags fall back to PIXCTL_* environment variables.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("pixctl")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "pixctl",
		Short:         "pixctl - PIX checkout terminal client",
		Long:          `pixctl creates PIX payments on the checkout API, shows their QR data and follows them until the payment is confirmed or expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("api-url", defaultAPIURL, "Base URL of the PIX checkout API (env PIXCTL_API_URL)")
	flags.Duration("request-timeout", defaultRequestTimeout, "Timeout of a single API request (env PIXCTL_REQUEST_TIMEOUT)")
	flags.String("payer-email", "", "Payer email sent with new payments (env PIXCTL_PAYER_EMAIL)")
	flags.BoolP("verbose", "v", false, "Log debug output to stderr")
	_ = a.v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("request_timeout", flags.Lookup("request-timeout"))
	_ = a.v.BindPFlag("payer_email", flags.Lookup("payer-email"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(a.createCmd())
	root.AddCommand(a.statusCmd())
	root.AddCommand(a.watchCmd())
	root.AddCommand(a.payCmd())
	return root
}
