package common

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// AddressLength is the byte length of a ledger account identifier.
const AddressLength = 20

// Address is a 20-byte account identifier on the host ledger,
// rendered as 0x-prefixed lowercase hex.
type Address [AddressLength]byte

// ZeroAddress is the zero value of Address. It doubles as the
// native-currency sentinel for payment token fields.
var ZeroAddress = Address{}

func AddressFromString(s string) (Address, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, errors.Wrapf(err, "invalid address %q", s)
	}
	if len(raw) != AddressLength {
		return Address{}, errors.Errorf("invalid address length: expected %d bytes, got %d", AddressLength, len(raw))
	}
	var addr Address
	copy(addr[:], raw)
	return addr, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	addr, err := AddressFromString(string(data))
	if err != nil {
		return errors.WithStack(err)
	}
	*a = addr
	return nil
}
