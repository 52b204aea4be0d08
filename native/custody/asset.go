package custody

import (
	"errors"
	"fmt"
	"math/big"
)

// AssetKind tags the transfer mechanics an asset follows. The set is closed:
// engine code dispatches on the tag rather than on open-ended interfaces.
type AssetKind uint8

const (
	// Fungible assets move by balance; pulls require prior authorization.
	Fungible AssetKind = iota
	// UniqueToken assets are single indivisible tokens identified by TokenID.
	UniqueToken
	// MultiToken assets carry per-TokenID balances.
	MultiToken
)

// Valid reports whether the kind is within the supported range.
func (k AssetKind) Valid() bool {
	switch k {
	case Fungible, UniqueToken, MultiToken:
		return true
	default:
		return false
	}
}

// String returns the canonical lowercase name of the kind.
func (k AssetKind) String() string {
	switch k {
	case Fungible:
		return "fungible"
	case UniqueToken:
		return "unique"
	case MultiToken:
		return "multi"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// AssetRef identifies an asset held or moved by the engine. TokenID is
// meaningful for unique and multi kinds only and must be zero for fungible
// references.
type AssetRef struct {
	Contract [20]byte  `json:"contract"`
	Kind     AssetKind `json:"kind"`
	TokenID  uint64    `json:"tokenId"`
}

// Equal reports whether two references name the same asset.
func (a AssetRef) Equal(other AssetRef) bool {
	return a.Contract == other.Contract && a.Kind == other.Kind && a.TokenID == other.TokenID
}

// Validate checks structural well-formedness of the reference.
func (a AssetRef) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("custody: invalid asset kind %d", uint8(a.Kind))
	}
	if a.Contract == ([20]byte{}) {
		return errors.New("custody: asset contract required")
	}
	if a.Kind == Fungible && a.TokenID != 0 {
		return errors.New("custody: fungible assets carry no token id")
	}
	return nil
}

// NormalizeAmount canonicalises a transfer quantity for the asset: unique
// tokens always move as one, other kinds keep the supplied quantity. A nil
// amount normalises to zero.
func (a AssetRef) NormalizeAmount(amount *big.Int) *big.Int {
	if a.Kind == UniqueToken {
		return big.NewInt(1)
	}
	if amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(amount)
}

// Bank is the custody surface the options engine operates against. All three
// asset kinds are reachable through the same three operations; per-kind
// mechanics stay behind the implementation.
type Bank interface {
	// Take pulls the asset from the holder into engine custody.
	Take(asset AssetRef, from [20]byte, amount *big.Int) error
	// Give releases the asset from engine custody to the recipient.
	Give(asset AssetRef, to [20]byte, amount *big.Int) error
	// CreditFrom is the named convenience for authorization-based fungible
	// pulls. Implementations treat it as Take.
	CreditFrom(asset AssetRef, from [20]byte, amount *big.Int) error
}

// DepositHandler consumes push-deposits of unique and multi-token assets.
// The custody transfer has already happened when the handler runs; the
// payload carries the instruction describing what the deposit completes.
// A handler error reverses the whole transfer.
type DepositHandler interface {
	HandleDeposit(from [20]byte, asset AssetRef, amount *big.Int, payload []byte) error
}
