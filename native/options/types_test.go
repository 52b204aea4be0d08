package options

import (
	"math/big"
	"testing"
)

func validOption() *Option {
	return &Option{
		ID:     1,
		Writer: writerAddr,
		Terms: OptionTerms{
			Collateral:       assetA,
			Counter:          assetB,
			Premium:          assetA,
			CollateralAmount: big.NewInt(50_000),
			CounterAmount:    big.NewInt(30_000),
			PremiumAmount:    big.NewInt(3_000),
			OfferDeadline:    100,
			ExerciseDeadline: 1000,
		},
		Funded: true,
	}
}

func TestSanitizeOptionAccepts(t *testing.T) {
	sanitized, err := SanitizeOption(validOption())
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if sanitized.ID != 1 || !sanitized.Funded {
		t.Fatalf("unexpected sanitized record: %+v", sanitized)
	}
	if sanitized.Listing.AskAmount == nil || sanitized.Listing.AskAmount.Sign() != 0 {
		t.Fatalf("nil amounts must normalise to zero")
	}
}

func TestSanitizeOptionDoesNotMutateInput(t *testing.T) {
	original := validOption()
	sanitized, err := SanitizeOption(original)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	sanitized.Terms.CollateralAmount.SetInt64(7)
	if original.Terms.CollateralAmount.Int64() != 50_000 {
		t.Fatalf("sanitize must return an independent copy")
	}
	if original.Listing.AskAmount != nil {
		t.Fatalf("input must stay untouched")
	}
}

func TestSanitizeOptionRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Option)
	}{
		{"zero id", func(o *Option) { o.ID = 0 }},
		{"missing writer", func(o *Option) { o.Writer = [20]byte{} }},
		{"invalid collateral asset", func(o *Option) { o.Terms.Collateral.Contract = [20]byte{} }},
		{"negative amount", func(o *Option) { o.Terms.CounterAmount = big.NewInt(-1) }},
		{"exercised and refunded", func(o *Option) {
			o.Participant = holderAddr
			o.Exercised = true
			o.CollateralRefunded = true
		}},
		{"premium withdrawn without participant", func(o *Option) { o.PremiumWithdrawn = true }},
		{"counter withdrawn before exercise", func(o *Option) {
			o.Participant = holderAddr
			o.CounterWithdrawn = true
		}},
		{"listing without participant", func(o *Option) {
			o.Listing = ListingInfo{Ask: assetC, AskAmount: big.NewInt(1), Active: true}
		}},
		{"listing on settled option", func(o *Option) {
			o.Participant = holderAddr
			o.Exercised = true
			o.Listing = ListingInfo{Ask: assetC, AskAmount: big.NewInt(1), Active: true}
		}},
		{"listing with invalid ask", func(o *Option) {
			o.Participant = holderAddr
			o.Listing = ListingInfo{AskAmount: big.NewInt(1), Active: true}
		}},
		{"participant before funding", func(o *Option) {
			o.Funded = false
			o.Participant = holderAddr
		}},
		{"refund before funding", func(o *Option) {
			o.Funded = false
			o.CollateralRefunded = true
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opt := validOption()
			tc.mutate(opt)
			if _, err := SanitizeOption(opt); err == nil {
				t.Fatalf("expected sanitize rejection")
			}
		})
	}
	if _, err := SanitizeOption(nil); err == nil {
		t.Fatalf("expected rejection of nil option")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := validOption()
	original.Listing = ListingInfo{Ask: assetC, AskAmount: big.NewInt(20_000)}
	clone := original.Clone()
	clone.Terms.PremiumAmount.SetInt64(1)
	clone.Listing.AskAmount.SetInt64(1)
	clone.Participant = holderAddr
	if original.Terms.PremiumAmount.Int64() != 3_000 {
		t.Fatalf("clone shares the premium amount")
	}
	if original.Listing.AskAmount.Int64() != 20_000 {
		t.Fatalf("clone shares the ask amount")
	}
	if original.HasParticipant() {
		t.Fatalf("clone shares the participant field")
	}
	var nilOpt *Option
	if nilOpt.Clone() != nil {
		t.Fatalf("nil clone must stay nil")
	}
}

func TestSettledAndHasParticipant(t *testing.T) {
	opt := validOption()
	if opt.Settled() || opt.HasParticipant() {
		t.Fatalf("fresh funded option must be live and unparticipated")
	}
	opt.Participant = holderAddr
	if !opt.HasParticipant() {
		t.Fatalf("participant not detected")
	}
	opt.Exercised = true
	if !opt.Settled() {
		t.Fatalf("exercised option must report settled")
	}
	opt.Exercised = false
	opt.CollateralRefunded = true
	if !opt.Settled() {
		t.Fatalf("refunded option must report settled")
	}
	var nilOpt *Option
	if nilOpt.Settled() || nilOpt.HasParticipant() {
		t.Fatalf("nil receivers must report false")
	}
}
