package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/patrickmn/go-cache"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
)

// Resolve returns the metadata location stored when copyID was minted.
// Unknown and destroyed copies fail with InvalidItemIDError.
func (s *MarketService) Resolve(ctx context.Context, copyID uint64) (string, error) {
	ctx, err := s.enter(ctx, "resolve")
	if err != nil {
		return "", err
	}

	cacheKey := strconv.FormatUint(copyID, 10)
	if loc, ok := s.locations.Get(cacheKey); ok {
		return loc.(string), nil
	}

	gen := s.locationGen.Load()

	var (
		location string
		found    bool
	)
	err = s.view(ctx, func(st *ledger.State) error {
		location, found, err = s.registry.Location(ctx, st.Tx(), copyID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("resolve copy %d: %w", copyID, err)
	}
	if !found {
		return "", &domain.InvalidItemIDError{ItemID: copyID}
	}

	s.cacheLocation(cacheKey, location, gen)
	return location, nil
}

// cacheLocation stores a location read while the destroy generation was gen.
// A destroy that committed after the read bumps the generation, and the
// entry is dropped again.
func (s *MarketService) cacheLocation(key, location string, gen uint64) {
	s.locations.Set(key, location, cache.DefaultExpiration)
	if s.locationGen.Load() != gen {
		s.locations.Delete(key)
	}
}
