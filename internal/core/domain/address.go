package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const AddressLength = 20

// Address identifies an account, a payout recipient or a spawned token entity.
// The zero value is the null address.
type Address [AddressLength]byte

func ParseAddress(s string) (Address, error) {
	var a Address

	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*AddressLength {
		return a, fmt.Errorf("address %q: %w", s, ErrInvalidAddress)
	}

	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return a, fmt.Errorf("address %q: %w", s, ErrInvalidAddress)
	}
	return a, nil
}

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
