package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/spf13/viper"
)

var (
	ErrMissingAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrInvalidPollTiming  = errors.New("POLL_INTERVAL and POLL_MAX_DURATION must be positive")
	ErrMissingPayerEmail  = errors.New("missing PIX_PAYER_EMAIL for a production MERCADOPAGO_ACCESS_TOKEN")
)

// SandboxPayerEmail is the payer Mercado Pago accepts for TEST- credentials.
const SandboxPayerEmail = "test_user_br@testuser.com"

// Config is the API process configuration.
//
// Sources, later wins: defaults, optional YAML file (PIX_CONFIG_FILE), environment.
// There is no built-in credential: without MERCADOPAGO_ACCESS_TOKEN the process
// refuses to start unless the mock gateway is enabled. A production credential
// also needs PIX_PAYER_EMAIL; sandbox credentials fall back to SandboxPayerEmail.
type Config struct {
	Port     int
	GinMode  string
	LogLevel string

	MercadoPagoAccessToken string
	MockGateway            bool
	MockApproveAfter       int

	Payer         PayerConfig
	PixExpiration time.Duration

	PollInterval    time.Duration
	PollMaxDuration time.Duration
}

type PayerConfig struct {
	Email                string
	FirstName            string
	LastName             string
	IdentificationType   string
	IdentificationNumber string
}

func (p PayerConfig) ToEntity() entities.Payer {
	return entities.Payer{
		Email:                p.Email,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		IdentificationType:   p.IdentificationType,
		IdentificationNumber: p.IdentificationNumber,
	}
}

// SandboxToken reports whether the credential targets the Mercado Pago sandbox.
func (c *Config) SandboxToken() bool {
	return strings.HasPrefix(c.MercadoPagoAccessToken, "TEST-")
}

func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through v, which tests may preload.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(v.GetString("PIX_CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:                   v.GetInt("PORT"),
		GinMode:                v.GetString("GIN_MODE"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		MercadoPagoAccessToken: strings.TrimSpace(v.GetString("MERCADOPAGO_ACCESS_TOKEN")),
		MockGateway:            isTruthy(v.GetString("PAYMENT_GATEWAY_MOCK")) || isTruthy(v.GetString("MERCADOPAGO_MOCK")),
		MockApproveAfter:       v.GetInt("PAYMENT_GATEWAY_MOCK_APPROVE_AFTER"),
		Payer: PayerConfig{
			Email:                strings.TrimSpace(v.GetString("PIX_PAYER_EMAIL")),
			FirstName:            v.GetString("PIX_PAYER_FIRST_NAME"),
			LastName:             v.GetString("PIX_PAYER_LAST_NAME"),
			IdentificationType:   v.GetString("PIX_PAYER_ID_TYPE"),
			IdentificationNumber: v.GetString("PIX_PAYER_ID_NUMBER"),
		},
		PixExpiration:   v.GetDuration("PIX_EXPIRATION"),
		PollInterval:    v.GetDuration("POLL_INTERVAL"),
		PollMaxDuration: v.GetDuration("POLL_MAX_DURATION"),
	}

	if !cfg.MockGateway && cfg.MercadoPagoAccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if cfg.PollInterval <= 0 || cfg.PollMaxDuration <= 0 {
		return nil, ErrInvalidPollTiming
	}
	if cfg.Payer.Email == "" && cfg.SandboxToken() {
		cfg.Payer.Email = SandboxPayerEmail
	}
	if cfg.Payer.Email == "" && !cfg.MockGateway {
		return nil, ErrMissingPayerEmail
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PAYMENT_GATEWAY_MOCK_APPROVE_AFTER", 3)
	v.SetDefault("PIX_PAYER_ID_TYPE", "CPF")
	v.SetDefault("PIX_EXPIRATION", "0s")
	v.SetDefault("POLL_INTERVAL", "3s")
	v.SetDefault("POLL_MAX_DURATION", "10m")
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
