package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName           string
	HTTPPort              string
	PostgresDSN           string
	KafkaBrokers          []string
	LedgerDomainSeparator string
	BootstrapAdmin        string
	// VerifierKind selects the authorization signature scheme:
	// "sr25519" for schnorrkel wallets, "static" for the deterministic
	// test fake.
	VerifierKind string

	EnableLedgerOutboxRelay       bool
	EnablePollOutboxRelay         bool
	EnableSubscriptionOutboxRelay bool
}

func Load() (Config, error) {
	// Local development reads a .env file when present; real deployments
	// inject the environment directly.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "pollux"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	separator := strings.TrimSpace(os.Getenv("LEDGER_DOMAIN_SEPARATOR"))
	if separator == "" {
		separator = "pollux-dev"
	}

	verifier := strings.TrimSpace(strings.ToLower(os.Getenv("LEDGER_VERIFIER")))
	if verifier == "" {
		verifier = "sr25519"
	}

	return Config{
		ServiceName:           service,
		HTTPPort:              port,
		PostgresDSN:           os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:          brokers,
		LedgerDomainSeparator: separator,
		BootstrapAdmin:        strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN")),
		VerifierKind:          verifier,

		EnableLedgerOutboxRelay:       envBool("ENABLE_LEDGER_OUTBOX_RELAY", true),
		EnablePollOutboxRelay:         envBool("ENABLE_POLL_OUTBOX_RELAY", true),
		EnableSubscriptionOutboxRelay: envBool("ENABLE_SUBSCRIPTION_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
