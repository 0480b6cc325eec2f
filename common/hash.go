package common

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// HashLength is the byte length of a ledger block/transaction hash.
const HashLength = 32

// Hash is a 32-byte ledger hash, rendered as 0x-prefixed lowercase hex.
type Hash [HashLength]byte

// Zero value of Hash
var (
	ZeroHash = Hash{}
	NullHash = ZeroHash
)

func HashFromString(s string) (Hash, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, errors.Wrapf(err, "invalid hash %q", s)
	}
	if len(raw) != HashLength {
		return Hash{}, errors.Errorf("invalid hash length: expected %d bytes, got %d", HashLength, len(raw))
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// IsEqual reports whether h equals target. Nil pointers are treated as
// zero hashes.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	parsed, err := HashFromString(string(data))
	if err != nil {
		return errors.WithStack(err)
	}
	*h = parsed
	return nil
}
