package config

import (
	"fmt"
	"strings"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// Validate checks the loaded configuration and fills parsed fields.
// Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Ledger.validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	admins, err := ParseAdmins(c.Auth.AdminsRaw)
	if err != nil {
		return fmt.Errorf("auth.admins: %w", err)
	}
	c.Auth.Admins = admins

	if _, err := domain.ParseAddress(c.Market.Address); err != nil {
		return fmt.Errorf("market.address: %w", err)
	}
	if c.Market.EventBatchSize <= 0 {
		return fmt.Errorf("market.event_batch_size must be > 0 (got %d)", c.Market.EventBatchSize)
	}
	if c.Market.EventPollInterval <= 0 || c.Market.EventRetryDelay <= 0 {
		return fmt.Errorf("market: event_poll_interval and event_retry_delay must be > 0")
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit: rps and burst must be > 0")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	return nil
}

func (l *LedgerConfig) validate() error {
	switch l.Backend {
	case BackendMemory:
	case BackendLevelDB:
		if l.Path == "" {
			return fmt.Errorf("path is required for %s", l.Backend)
		}
	case BackendMySQL, BackendSQLite:
		if l.DSN == "" {
			return fmt.Errorf("dsn is required for %s", l.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", l.Backend)
	}
	if l.LockWait < 0 {
		return fmt.Errorf("lock_wait must not be negative (got %v)", l.LockWait)
	}
	return nil
}

// ParseAdmins parses a comma-separated list of addresses. An empty string
// returns a nil slice.
func ParseAdmins(raw string) ([]domain.Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	admins := make([]domain.Address, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a, err := domain.ParseAddress(p)
		if err != nil {
			return nil, err
		}
		if a.IsZero() {
			return nil, fmt.Errorf("zero address is not a valid admin")
		}
		admins = append(admins, a)
	}

	return admins, nil
}

// MarketAddress returns the parsed market namespace address.
func (c *Config) MarketAddress() domain.Address {
	a, _ := domain.ParseAddress(c.Market.Address)
	return a
}
