package payment

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"birthdayclub/internal/domain"
)

const (
	ProviderMidtrans = "midtrans"
	ProviderMock     = "mock"
)

// Config selects and configures a gateway strategy.
type Config struct {
	Provider           string
	MidtransServerKey  string
	MidtransProduction bool
	MockSecret         string
	PublicBaseURL      string
}

// NewGateway returns the strategy named by cfg.Provider. An empty provider
// yields a gateway that refuses every call, so the rest of the API still runs.
func NewGateway(cfg Config, logger *slog.Logger) (domain.PaymentGateway, error) {
	switch cfg.Provider {
	case ProviderMidtrans:
		if cfg.MidtransServerKey == "" {
			return nil, fmt.Errorf("midtrans gateway: MIDTRANS_SERVER_KEY is required")
		}
		return NewMidtrans(cfg.MidtransServerKey, cfg.MidtransProduction), nil
	case ProviderMock:
		if cfg.MockSecret == "" {
			return nil, fmt.Errorf("mock gateway: MOCK_PAYMENT_SECRET is required")
		}
		logger.Warn("payment gateway in mock mode, no real charges are made")
		return NewMock(cfg.MockSecret, cfg.PublicBaseURL), nil
	case "":
		logger.Warn("no payment provider configured, payment intents will be refused")
		return Unconfigured(), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

func header(headers map[string][]string, key string) string {
	return http.Header(headers).Get(key)
}

// unavailable wraps a provider failure so callers see it as an upstream error.
func unavailable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, domain.ErrUpstreamUnavailable, err)
}

var nowFunc = time.Now
