package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
)

const (
	EventItemCreated   = "ItemCreated"
	EventTokenCreated  = "TokenCreated"
	EventItemCopySold  = "ItemCopySold"
	EventCopyDestroyed = "CopyDestroyed"
)

// Event is recorded in the transaction that causes it and delivered after
// that transaction commits.
type Event interface {
	EventName() string
}

// EventRecord is an event waiting in the outbox, numbered in commit order.
type EventRecord struct {
	Seq   uint64
	Event Event
}

// DecodeEvent rebuilds an event from its name and JSON payload.
func DecodeEvent(name string, data []byte) (Event, error) {
	var ev Event
	switch name {
	case EventItemCreated:
		ev = &ItemCreated{}
	case EventTokenCreated:
		ev = &TokenCreated{}
	case EventItemCopySold:
		ev = &ItemCopySold{}
	case EventCopyDestroyed:
		ev = &CopyDestroyed{}
	default:
		return nil, fmt.Errorf("unknown event %q", name)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	switch e := ev.(type) {
	case *ItemCreated:
		return *e, nil
	case *TokenCreated:
		return *e, nil
	case *ItemCopySold:
		return *e, nil
	default:
		return *ev.(*CopyDestroyed), nil
	}
}

type ItemCreated struct {
	ItemID          uint64   `json:"item_id"`
	PayoutRecipient Address  `json:"payout_recipient"`
	Price           *big.Int `json:"price"`
	Quantity        uint32   `json:"quantity"`
	RoyaltyBps      uint32   `json:"royalty_bps"`
}

func (ItemCreated) EventName() string { return EventItemCreated }

type TokenCreated struct {
	TokenID uint64  `json:"token_id"`
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	Owner   Address `json:"owner"`
	Entity  Address `json:"entity"`
	BaseURI string  `json:"base_uri"`
}

func (TokenCreated) EventName() string { return EventTokenCreated }

type ItemCopySold struct {
	CopyID   uint64  `json:"copy_id"`
	ItemID   uint64  `json:"item_id"`
	NumSold  uint32  `json:"num_sold"`
	Buyer    Address `json:"buyer"`
	Location string  `json:"location"`
}

func (ItemCopySold) EventName() string { return EventItemCopySold }

type CopyDestroyed struct {
	CopyID uint64  `json:"copy_id"`
	Caller Address `json:"caller"`
}

func (CopyDestroyed) EventName() string { return EventCopyDestroyed }
