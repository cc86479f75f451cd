package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/mintmarket/internal/adapter/storage"
	"github.com/rl1809/mintmarket/internal/capability"
	"github.com/rl1809/mintmarket/internal/core/domain"
	"github.com/rl1809/mintmarket/internal/core/service"
	"github.com/rl1809/mintmarket/internal/ownership"
)

const (
	quantity      = 20
	totalRequests = 50
	price         = 100
)

var (
	market = domain.BytesToAddress([]byte("mkt"))
	seller = domain.BytesToAddress([]byte("seller"))
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dir, err := os.MkdirTemp("", "mintmarket-stress-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	led, err := storage.OpenLevelDBLedger(dir)
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}
	defer led.Close()

	svc := service.NewMarketService(service.Deps{
		Ledger:   led,
		Registry: ownership.NewRegistry(market),
		Factory:  ownership.NewFactory(market),
		Guard:    capability.NewGuard(),
		Access:   capability.NewRoles(),
	}, service.Options{}, logger)
	defer svc.Close()

	itemID, err := svc.CreateItem(ctx, seller, big.NewInt(price), quantity, 0)
	if err != nil {
		log.Fatalf("failed to create item: %v", err)
	}

	var successCount, soldOutCount, otherCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			buyer := domain.BytesToAddress([]byte(fmt.Sprintf("buyer-%d", n)))
			_, err := svc.BuyItemCopy(ctx, buyer, itemID, "https://stress/meta", big.NewInt(price))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrItemSoldOut):
				soldOutCount.Add(1)
			default:
				otherCount.Add(1)
				log.Printf("buyer %d: unexpected error: %v", n, err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Quantity:         %d\n", quantity)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Other Errors:     %d\n", otherCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == quantity && soldOut == totalRequests-quantity {
		fmt.Printf("PASS: Exactly %d copies sold, %d rejected\n", quantity, totalRequests-quantity)
	} else {
		fmt.Printf("FAIL: Expected %d sold/%d rejected, got %d/%d\n",
			quantity, totalRequests-quantity, success, soldOut)
	}

	item, err := svc.GetItem(ctx, itemID)
	if err != nil {
		log.Fatalf("failed to read item: %v", err)
	}
	fmt.Printf("Final NumSold:    %d\n", item.NumSold)

	proceeds, err := svc.SellerProceeds(ctx, seller)
	if err != nil {
		log.Fatalf("failed to read proceeds: %v", err)
	}
	want := big.NewInt(price * quantity)
	if item.NumSold == quantity && proceeds.Cmp(want) == 0 {
		fmt.Printf("PASS: Item sold out, seller proceeds %s\n", proceeds)
	} else {
		fmt.Printf("FAIL: Expected num_sold %d and proceeds %s, got %d and %s\n",
			quantity, want, item.NumSold, proceeds)
	}

	// one ItemCreated plus one ItemCopySold per sale, none lost under contention
	pending, err := svc.PendingEvents(ctx, totalRequests*2)
	if err != nil {
		log.Fatalf("failed to read outbox: %v", err)
	}
	fmt.Printf("Outbox Events:    %d (expected %d)\n", len(pending), quantity+1)
}
