package domain

import "math/big"

type ListedItem struct {
	ID              uint64   `json:"id"`
	PayoutRecipient Address  `json:"payout_recipient"`
	Price           *big.Int `json:"price"`
	Quantity        uint32   `json:"quantity"`
	NumSold         uint32   `json:"num_sold"`
	RoyaltyBps      uint32   `json:"royalty_bps"`
}

// Listed reports whether the item exists; unlisted ids read back with a zero cap.
func (i ListedItem) Listed() bool {
	return i.Quantity > 0
}

func (i ListedItem) SoldOut() bool {
	return i.NumSold >= i.Quantity
}
