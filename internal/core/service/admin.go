package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/ledger"
)

// DestroyCopy burns a copy on behalf of a privileged caller. The copy's item
// link and the item's sold count are left as history.
func (s *MarketService) DestroyCopy(ctx context.Context, caller domain.Address, copyID uint64) error {
	ctx, err := s.enter(ctx, "destroy copy")
	if err != nil {
		return err
	}

	if err := s.access.RequirePrivileged(caller); err != nil {
		s.log.Warn("destroy rejected", "caller", caller, "copy_id", copyID)
		return err
	}

	err = s.update(ctx, func(st *ledger.State) error {
		_, minted, err := s.registry.OwnerOf(ctx, st.Tx(), copyID)
		if err != nil {
			return err
		}
		if !minted {
			return &domain.InvalidItemIDError{ItemID: copyID}
		}
		if err := s.registry.Burn(ctx, st.Tx(), copyID); err != nil {
			return err
		}

		_, err = st.Enqueue(domain.CopyDestroyed{CopyID: copyID, Caller: caller})
		return err
	})
	if err != nil {
		return fmt.Errorf("destroy copy %d: %w", copyID, err)
	}

	s.locationGen.Add(1)
	s.locations.Delete(strconv.FormatUint(copyID, 10))

	s.log.Info("copy destroyed", "copy_id", copyID, "caller", caller)
	s.notify()
	return nil
}
