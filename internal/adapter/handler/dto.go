package handler

import (
	"fmt"
	"math/big"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

// Amounts cross the wire as decimal strings.

type CreateItemRequest struct {
	PayoutRecipient string `json:"payout_recipient"`
	Price           string `json:"price"`
	Quantity        uint32 `json:"quantity"`
	RoyaltyBps      uint32 `json:"royalty_bps"`
}

type CreateItemResponse struct {
	ItemID uint64 `json:"item_id"`
}

type ItemResponse struct {
	ID              uint64 `json:"id"`
	PayoutRecipient string `json:"payout_recipient"`
	Price           string `json:"price"`
	Quantity        uint32 `json:"quantity"`
	NumSold         uint32 `json:"num_sold"`
	RoyaltyBps      uint32 `json:"royalty_bps"`
	Proceeds        string `json:"proceeds"`
}

// BuyItemCopyRequest is the body of POST /api/items/{id}/buy. ItemID is
// optional and must equal the path id when set.
type BuyItemCopyRequest struct {
	ItemID          uint64 `json:"item_id,omitempty"`
	MetadataBaseURI string `json:"metadata_base_uri"`
	Payment         string `json:"payment"`
	RequestID       string `json:"request_id,omitempty"`
}

type CopyResponse struct {
	ID       uint64 `json:"id"`
	ItemID   uint64 `json:"item_id"`
	Owner    string `json:"owner"`
	Location string `json:"location"`
}

type CreateTokenRequest struct {
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	BaseURI string `json:"base_uri"`
}

type TokenResponse struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Owner   string `json:"owner"`
	Entity  string `json:"entity"`
	BaseURI string `json:"base_uri"`
}

type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
}

type ResolveRequest struct {
	CopyID uint64 `json:"copy_id"`
}

type ResolveResponse struct {
	URI string `json:"uri"`
}

type DestroyCopyRequest struct {
	CopyID uint64 `json:"copy_id"`
}

type DestroyCopyResponse struct{}

type ProceedsResponse struct {
	Account  string `json:"account"`
	Proceeds string `json:"proceeds"`
}

func toItemResponse(item *domain.ListedItem, proceeds *big.Int) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		PayoutRecipient: item.PayoutRecipient.String(),
		Price:           item.Price.String(),
		Quantity:        item.Quantity,
		NumSold:         item.NumSold,
		RoyaltyBps:      item.RoyaltyBps,
		Proceeds:        proceeds.String(),
	}
}

func toCopyResponse(cp *domain.Copy) CopyResponse {
	return CopyResponse{
		ID:       cp.ID,
		ItemID:   cp.ItemID,
		Owner:    cp.Owner.String(),
		Location: cp.Location,
	}
}

func toTokenResponse(tok domain.UserToken) TokenResponse {
	return TokenResponse{
		ID:      tok.ID,
		Name:    tok.Name,
		Symbol:  tok.Symbol,
		Owner:   tok.Owner.String(),
		Entity:  tok.Entity.String(),
		BaseURI: tok.BaseURI,
	}
}

// parseAddress and parseAmount tag malformed input so it maps to a 400.
func parseAddress(field, s string) (domain.Address, error) {
	a, err := domain.ParseAddress(s)
	if err != nil {
		return a, fmt.Errorf("%s: %w", field, err)
	}
	return a, nil
}

func parseAmount(field, s string) (*big.Int, error) {
	v, err := domain.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}
