package options

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/EgeCaner/OptionWizard/core/types"
)

func eventOption() *Option {
	opt := validOption()
	opt.ID = 42
	opt.Participant = holderAddr
	return opt
}

func requireAttr(t *testing.T, evt *types.Event, key, want string) {
	t.Helper()
	got, ok := evt.Attribute(key)
	if !ok {
		t.Fatalf("event %s missing attribute %s", evt.Type, key)
	}
	if got != want {
		t.Fatalf("event %s attribute %s: expected %s, got %s", evt.Type, key, want, got)
	}
}

func TestOptionEventPayloads(t *testing.T) {
	opt := eventOption()

	offered := NewOfferedEvent(opt)
	if offered.Type != EventTypeOptionOffered {
		t.Fatalf("unexpected type %s", offered.Type)
	}
	requireAttr(t, offered, "id", "42")
	requireAttr(t, offered, "writer", hex.EncodeToString(writerAddr[:]))
	requireAttr(t, offered, "participant", hex.EncodeToString(holderAddr[:]))
	requireAttr(t, offered, "funded", "true")

	funded := NewFundedEvent(opt)
	requireAttr(t, funded, "offerDeadline", "100")
	requireAttr(t, funded, "exerciseDeadline", "1000")

	participated := NewParticipatedEvent(opt)
	requireAttr(t, participated, "premiumAmount", "3000")

	exercised := NewExercisedEvent(opt)
	requireAttr(t, exercised, "counterAmount", "30000")
	requireAttr(t, exercised, "collateralAmount", "50000")

	refunded := NewCollateralRefundedEvent(opt, big.NewInt(0))
	requireAttr(t, refunded, "amount", "0")

	withdrawn := NewPremiumWithdrawnEvent(opt, big.NewInt(3_000))
	requireAttr(t, withdrawn, "amount", "3000")

	counter := NewCounterWithdrawnEvent(opt, big.NewInt(30_000))
	requireAttr(t, counter, "amount", "30000")
}

func TestUnparticipatedEventOmitsParticipant(t *testing.T) {
	evt := NewOfferedEvent(validOption())
	if _, ok := evt.Attribute("participant"); ok {
		t.Fatalf("unparticipated option must not report a participant")
	}
	requireAttr(t, evt, "funded", "true")
}

func TestListingEventPayloads(t *testing.T) {
	opt := eventOption()
	opt.Listing = ListingInfo{Ask: multiAsset, AskAmount: big.NewInt(4), Active: true}

	listed := NewListedEvent(opt)
	if listed.Type != EventTypeOptionListed {
		t.Fatalf("unexpected type %s", listed.Type)
	}
	requireAttr(t, listed, "ask", hex.EncodeToString(multiAsset.Contract[:]))
	requireAttr(t, listed, "askKind", "multi")
	requireAttr(t, listed, "askTokenId", "7")
	requireAttr(t, listed, "askAmount", "4")

	delisted := NewDelistedEvent(opt)
	if delisted.Type != EventTypeOptionDelisted {
		t.Fatalf("unexpected type %s", delisted.Type)
	}

	transferred := NewPositionTransferredEvent(opt, holderAddr, buyerAddr, big.NewInt(4))
	requireAttr(t, transferred, "seller", hex.EncodeToString(holderAddr[:]))
	requireAttr(t, transferred, "buyer", hex.EncodeToString(buyerAddr[:]))
	requireAttr(t, transferred, "price", "4")

	proceeds := NewProceedsWithdrawnEvent(multiAsset, holderAddr, big.NewInt(4))
	if proceeds.Type != EventTypeProceedsWithdrawn {
		t.Fatalf("unexpected type %s", proceeds.Type)
	}
	requireAttr(t, proceeds, "asset", hex.EncodeToString(multiAsset.Contract[:]))
	requireAttr(t, proceeds, "assetKind", "multi")
	requireAttr(t, proceeds, "recipient", hex.EncodeToString(holderAddr[:]))
	requireAttr(t, proceeds, "amount", "4")

	fungibleProceeds := NewProceedsWithdrawnEvent(assetC, holderAddr, big.NewInt(20_000))
	if _, ok := fungibleProceeds.Attribute("assetTokenId"); ok {
		t.Fatalf("fungible asset attributes must omit the token id")
	}
	requireAttr(t, fungibleProceeds, "assetKind", "fungible")
}

func TestNilOptionEventPayloads(t *testing.T) {
	evt := NewFundedEvent(nil)
	if evt.Type != EventTypeOptionFunded {
		t.Fatalf("unexpected type %s", evt.Type)
	}
	if len(evt.Attributes) != 0 {
		t.Fatalf("nil option must produce an empty attribute set")
	}
}
