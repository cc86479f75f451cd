package service

import (
	"context"
	"fmt"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
)

// CreateToken spawns a token-issuing entity for owner through the factory and
// appends it to caller's token list. Inputs are validated only by the factory.
func (s *MarketService) CreateToken(ctx context.Context, caller, owner domain.Address, name, symbol, baseURI string) (*domain.UserToken, error) {
	ctx, err := s.enter(ctx, "create token")
	if err != nil {
		return nil, err
	}

	var tok domain.UserToken
	err = s.update(ctx, func(st *ledger.State) error {
		entity, err := s.factory.Deploy(ctx, st.Tx(), owner, name, symbol, baseURI)
		if err != nil {
			return fmt.Errorf("deploy entity: %w", err)
		}

		id, err := st.NextID(ledger.CounterTokens)
		if err != nil {
			return err
		}

		tok = domain.UserToken{
			ID:      id,
			Name:    name,
			Symbol:  symbol,
			Owner:   owner,
			Entity:  entity,
			BaseURI: baseURI,
		}
		if err := st.AppendUserToken(caller, tok); err != nil {
			return err
		}

		_, err = st.Enqueue(domain.TokenCreated{
			TokenID: tok.ID,
			Name:    tok.Name,
			Symbol:  tok.Symbol,
			Owner:   tok.Owner,
			Entity:  tok.Entity,
			BaseURI: tok.BaseURI,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	s.log.Info("token created",
		"token_id", tok.ID,
		"caller", caller,
		"owner", owner,
		"entity", tok.Entity,
	)
	s.notify()

	return &tok, nil
}

// UserTokens lists the tokens created by account, oldest first.
func (s *MarketService) UserTokens(ctx context.Context, account domain.Address) ([]domain.UserToken, error) {
	ctx, err := s.enter(ctx, "user tokens")
	if err != nil {
		return nil, err
	}

	var tokens []domain.UserToken
	err = s.view(ctx, func(st *ledger.State) error {
		tokens, err = st.UserTokens(account)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("user tokens %s: %w", account, err)
	}
	return tokens, nil
}
