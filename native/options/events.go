package options

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/EgeCaner/OptionWizard/core/types"
	"github.com/EgeCaner/OptionWizard/native/custody"
)

const (
	EventTypeOptionOffered       = "options.offered"
	EventTypeOptionFunded        = "options.funded"
	EventTypeOptionParticipated  = "options.participated"
	EventTypePremiumWithdrawn    = "options.premium_withdrawn"
	EventTypeOptionExercised     = "options.exercised"
	EventTypeCounterWithdrawn    = "options.counter_withdrawn"
	EventTypeCollateralRefunded  = "options.collateral_refunded"
	EventTypeOptionListed        = "options.listed"
	EventTypeOptionDelisted      = "options.delisted"
	EventTypePositionTransferred = "options.position_transferred"
	EventTypeProceedsWithdrawn   = "options.proceeds_withdrawn"
)

// NewOfferedEvent returns the canonical payload for a newly registered,
// not yet funded offer.
func NewOfferedEvent(o *Option) *types.Event { return newOptionEvent(EventTypeOptionOffered, o) }

// NewFundedEvent returns the canonical payload emitted when the collateral is
// custodied and the terms become final.
func NewFundedEvent(o *Option) *types.Event {
	evt := newOptionEvent(EventTypeOptionFunded, o)
	if o != nil {
		evt.Attributes["offerDeadline"] = strconv.FormatUint(o.Terms.OfferDeadline, 10)
		evt.Attributes["exerciseDeadline"] = strconv.FormatUint(o.Terms.ExerciseDeadline, 10)
	}
	return evt
}

// NewParticipatedEvent returns the payload emitted when a participant joins
// the option by paying the premium.
func NewParticipatedEvent(o *Option) *types.Event {
	evt := newOptionEvent(EventTypeOptionParticipated, o)
	if o != nil {
		evt.Attributes["premiumAmount"] = cloneBigInt(o.Terms.PremiumAmount).String()
	}
	return evt
}

// NewPremiumWithdrawnEvent returns the payload for the writer's premium
// withdrawal.
func NewPremiumWithdrawnEvent(o *Option, amount *big.Int) *types.Event {
	return withAmount(newOptionEvent(EventTypePremiumWithdrawn, o), amount)
}

// NewExercisedEvent returns the payload emitted when the participant
// exercises, swapping the counter asset for the collateral.
func NewExercisedEvent(o *Option) *types.Event {
	evt := newOptionEvent(EventTypeOptionExercised, o)
	if o != nil {
		evt.Attributes["counterAmount"] = cloneBigInt(o.Terms.CounterAmount).String()
		evt.Attributes["collateralAmount"] = cloneBigInt(o.Terms.CollateralAmount).String()
	}
	return evt
}

// NewCounterWithdrawnEvent returns the payload for the writer's counter-asset
// withdrawal after exercise.
func NewCounterWithdrawnEvent(o *Option, amount *big.Int) *types.Event {
	return withAmount(newOptionEvent(EventTypeCounterWithdrawn, o), amount)
}

// NewCollateralRefundedEvent returns the payload for a collateral refund. A
// repeated refund reports amount 0 so callers can poll the transition safely.
func NewCollateralRefundedEvent(o *Option, amount *big.Int) *types.Event {
	return withAmount(newOptionEvent(EventTypeCollateralRefunded, o), amount)
}

// NewListedEvent returns the payload emitted when the participant lists the
// position for resale.
func NewListedEvent(o *Option) *types.Event {
	evt := newOptionEvent(EventTypeOptionListed, o)
	if o != nil {
		assetAttrs(evt.Attributes, "ask", o.Listing.Ask)
		evt.Attributes["askAmount"] = cloneBigInt(o.Listing.AskAmount).String()
	}
	return evt
}

// NewDelistedEvent returns the payload emitted when a listing is withdrawn.
func NewDelistedEvent(o *Option) *types.Event { return newOptionEvent(EventTypeOptionDelisted, o) }

// NewPositionTransferredEvent returns the payload emitted when a resale
// completes and the position moves from seller to buyer.
func NewPositionTransferredEvent(o *Option, seller, buyer [20]byte, price *big.Int) *types.Event {
	evt := newOptionEvent(EventTypePositionTransferred, o)
	evt.Attributes["seller"] = hex.EncodeToString(seller[:])
	evt.Attributes["buyer"] = hex.EncodeToString(buyer[:])
	evt.Attributes["price"] = cloneBigInt(price).String()
	return evt
}

// NewProceedsWithdrawnEvent returns the payload emitted when a credited
// balance is pulled from the ledger.
func NewProceedsWithdrawnEvent(asset custody.AssetRef, to [20]byte, amount *big.Int) *types.Event {
	attrs := make(map[string]string)
	assetAttrs(attrs, "asset", asset)
	attrs["recipient"] = hex.EncodeToString(to[:])
	attrs["amount"] = cloneBigInt(amount).String()
	return &types.Event{Type: EventTypeProceedsWithdrawn, Attributes: attrs}
}

func newOptionEvent(eventType string, o *Option) *types.Event {
	attrs := make(map[string]string)
	if o == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(o.ID, 10)
	attrs["writer"] = hex.EncodeToString(o.Writer[:])
	if o.HasParticipant() {
		attrs["participant"] = hex.EncodeToString(o.Participant[:])
	}
	attrs["funded"] = strconv.FormatBool(o.Funded)
	return &types.Event{Type: eventType, Attributes: attrs}
}

func withAmount(evt *types.Event, amount *big.Int) *types.Event {
	evt.Attributes["amount"] = cloneBigInt(amount).String()
	return evt
}

func assetAttrs(attrs map[string]string, prefix string, asset custody.AssetRef) {
	attrs[prefix] = hex.EncodeToString(asset.Contract[:])
	attrs[prefix+"Kind"] = asset.Kind.String()
	if asset.Kind != custody.Fungible {
		attrs[prefix+"TokenId"] = strconv.FormatUint(asset.TokenID, 10)
	}
}
