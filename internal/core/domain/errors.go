package domain

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors. The field-carrying types below unwrap to them, so callers
// can match with errors.Is and read the fields with errors.As.
var (
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrQuantityRequired     = errors.New("quantity required")
	ErrQuantityDoesNotExist = errors.New("quantity does not exist")
	ErrInvalidItemID        = errors.New("invalid item id")
	ErrItemSoldOut          = errors.New("item sold out")
	ErrInsufficientFund     = errors.New("insufficient fund")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrReentrantCall        = errors.New("reentrant call")
)

type QuantityRequiredError struct {
	Quantity    uint32
	MinRequired uint32
}

func (e *QuantityRequiredError) Error() string {
	return fmt.Sprintf("quantity required: got %d, min %d", e.Quantity, e.MinRequired)
}

func (e *QuantityRequiredError) Unwrap() error { return ErrQuantityRequired }

type QuantityDoesNotExistError struct {
	AvailableQuantity uint32
}

func (e *QuantityDoesNotExistError) Error() string {
	return fmt.Sprintf("quantity does not exist: available %d", e.AvailableQuantity)
}

func (e *QuantityDoesNotExistError) Unwrap() error { return ErrQuantityDoesNotExist }

// InvalidItemIDError is also returned for unknown copy ids; items and copies
// share this error code.
type InvalidItemIDError struct {
	ItemID uint64
}

func (e *InvalidItemIDError) Error() string {
	return fmt.Sprintf("invalid item id: %d", e.ItemID)
}

func (e *InvalidItemIDError) Unwrap() error { return ErrInvalidItemID }

type ItemSoldOutError struct {
	Quantity uint32
	NumSold  uint32
}

func (e *ItemSoldOutError) Error() string {
	return fmt.Sprintf("item sold out: %d of %d sold", e.NumSold, e.Quantity)
}

func (e *ItemSoldOutError) Unwrap() error { return ErrItemSoldOut }

type InsufficientFundError struct {
	Price       *big.Int
	AllowedFund *big.Int
}

func (e *InsufficientFundError) Error() string {
	return fmt.Sprintf("insufficient fund: price %s, allowed %s", e.Price, e.AllowedFund)
}

func (e *InsufficientFundError) Unwrap() error { return ErrInsufficientFund }

type UnauthorizedError struct {
	Caller Address
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Caller)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }
