package handler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rl1809/mintmarket/internal/adapter/storage"
	"github.com/rl1809/mintmarket/internal/auth"
	"github.com/rl1809/mintmarket/internal/capability"
	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/service"
	"github.com/rl1809/mintmarket/internal/ownership"
)

var (
	testMarket = domain.BytesToAddress([]byte{0x4d})
	testAdmin  = domain.BytesToAddress([]byte{0xad})
	testSeller = domain.BytesToAddress([]byte{0x0a})
	testBuyer  = domain.BytesToAddress([]byte{0x0b})

	discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type env struct {
	svc    *service.MarketService
	tokens *auth.JWTManager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	svc := service.NewMarketService(service.Deps{
		Ledger:   storage.NewMemoryLedger(),
		Registry: ownership.NewRegistry(testMarket),
		Factory:  ownership.NewFactory(testMarket),
		Guard:    capability.NewGuard(),
		Access:   capability.NewRoles(testAdmin),
	}, service.Options{}, discardLog)
	t.Cleanup(svc.Close)

	return &env{
		svc:    svc,
		tokens: auth.NewJWTManager("handler-test-secret-at-least-32-chars", "mintmarket-test", time.Minute),
	}
}

func (e *env) bearer(t *testing.T, caller domain.Address) string {
	t.Helper()
	token, err := e.tokens.Generate(caller)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}
