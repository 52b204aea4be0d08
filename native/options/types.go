package options

import (
	"fmt"
	"math/big"

	"github.com/EgeCaner/OptionWizard/native/custody"
)

// OptionTerms captures the economic terms of an option. Terms are finalised
// when the collateral is funded and immutable afterwards. Amounts are
// quantities for fungible and multi-token assets and implicitly 1 for unique
// tokens.
type OptionTerms struct {
	Collateral custody.AssetRef `json:"collateral"`
	Counter    custody.AssetRef `json:"counter"`
	Premium    custody.AssetRef `json:"premium"`

	CollateralAmount *big.Int `json:"collateralAmount"`
	CounterAmount    *big.Int `json:"counterAmount"`
	PremiumAmount    *big.Int `json:"premiumAmount"`

	// Deadlines are absolute points in the host's progress unit (block
	// height or elapsed seconds); callers convert wall-clock intent before
	// calling.
	OfferDeadline    uint64 `json:"offerDeadline"`
	ExerciseDeadline uint64 `json:"exerciseDeadline"`
}

// ListingInfo describes an active or historical secondary-market listing of
// the option position.
type ListingInfo struct {
	Ask       custody.AssetRef `json:"ask"`
	AskAmount *big.Int         `json:"askAmount"`
	Active    bool             `json:"active"`
}

// Option is a single option record. Records are created by the writer's
// offer, mutated by lifecycle and market transitions and never deleted; a
// fully settled record remains as an immutable audit entry.
type Option struct {
	ID          uint64      `json:"id"`
	Writer      [20]byte    `json:"writer"`
	Participant [20]byte    `json:"participant"`
	Terms       OptionTerms `json:"terms"`

	Funded             bool `json:"funded"`
	PremiumWithdrawn   bool `json:"premiumWithdrawn"`
	Exercised          bool `json:"exercised"`
	CounterWithdrawn   bool `json:"counterWithdrawn"`
	CollateralRefunded bool `json:"collateralRefunded"`

	Listing   ListingInfo `json:"listing"`
	CreatedAt uint64      `json:"createdAt"`
}

// HasParticipant reports whether a participant holds the position.
func (o *Option) HasParticipant() bool {
	return o != nil && o.Participant != ([20]byte{})
}

// Settled reports whether the record reached a terminal outcome.
func (o *Option) Settled() bool {
	return o != nil && (o.Exercised || o.CollateralRefunded)
}

// Clone returns a deep copy of the record so callers can mutate the copy
// without affecting the stored instance.
func (o *Option) Clone() *Option {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Terms.CollateralAmount = cloneBigInt(o.Terms.CollateralAmount)
	clone.Terms.CounterAmount = cloneBigInt(o.Terms.CounterAmount)
	clone.Terms.PremiumAmount = cloneBigInt(o.Terms.PremiumAmount)
	clone.Listing.AskAmount = cloneBigInt(o.Listing.AskAmount)
	return &clone
}

// SanitizeOption validates structural and lifecycle invariants and returns a
// cloned record with non-nil amount fields. The original value is not
// mutated.
func SanitizeOption(o *Option) (*Option, error) {
	if o == nil {
		return nil, fmt.Errorf("options: nil option")
	}
	clone := o.Clone()
	if clone.ID == 0 {
		return nil, fmt.Errorf("options: id must be positive")
	}
	if clone.Writer == ([20]byte{}) {
		return nil, fmt.Errorf("options: writer required")
	}
	for _, asset := range []custody.AssetRef{clone.Terms.Collateral, clone.Terms.Counter, clone.Terms.Premium} {
		if err := asset.Validate(); err != nil {
			return nil, err
		}
	}
	for _, amt := range []*big.Int{clone.Terms.CollateralAmount, clone.Terms.CounterAmount, clone.Terms.PremiumAmount, clone.Listing.AskAmount} {
		if amt.Sign() < 0 {
			return nil, fmt.Errorf("options: negative amount")
		}
	}
	if clone.Exercised && clone.CollateralRefunded {
		return nil, fmt.Errorf("options: exercised and refunded are mutually exclusive")
	}
	if clone.PremiumWithdrawn && !clone.HasParticipant() {
		return nil, fmt.Errorf("options: premium withdrawn without participant")
	}
	if clone.CounterWithdrawn && !clone.Exercised {
		return nil, fmt.Errorf("options: counter withdrawn before exercise")
	}
	if clone.Listing.Active {
		if !clone.HasParticipant() {
			return nil, fmt.Errorf("options: listing requires a participant")
		}
		if clone.Settled() {
			return nil, fmt.Errorf("options: listing on settled option")
		}
		if err := clone.Listing.Ask.Validate(); err != nil {
			return nil, err
		}
	}
	if !clone.Funded && (clone.HasParticipant() || clone.Settled() || clone.PremiumWithdrawn || clone.CounterWithdrawn) {
		return nil, fmt.Errorf("options: transitions recorded before funding")
	}
	return clone, nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
