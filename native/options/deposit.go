package options

import (
	"encoding/binary"
	"math/big"

	"github.com/EgeCaner/OptionWizard/native/custody"
)

// DepositAction discriminates which transition a unique or multi-token
// deposit completes.
type DepositAction uint8

const (
	// DepositFundCollateral funds an offer with the deposited asset as
	// collateral and finalises the remaining terms from the payload.
	DepositFundCollateral DepositAction = 0x01
	// DepositParticipate pays the premium with the deposited asset.
	DepositParticipate DepositAction = 0x02
	// DepositBuyListed settles an active listing with the deposited asset.
	DepositBuyListed DepositAction = 0x03
)

const (
	depositHeaderLen      = 1
	depositFundLen        = depositHeaderLen + 5*8
	depositParticipateLen = depositHeaderLen + 8
	depositBuyLen         = depositHeaderLen + 8
)

// DepositInstruction is the decoded form of a deposit payload: one leading
// tag byte followed by fixed-width big-endian fields. Only the fund action
// carries fields beyond the option id.
type DepositInstruction struct {
	Action           DepositAction
	OptionID         uint64
	CounterAmount    uint64
	PremiumAmount    uint64
	OfferDeadline    uint64
	ExerciseDeadline uint64
}

// Encode serialises the instruction into its wire form.
func (ins *DepositInstruction) Encode() []byte {
	switch ins.Action {
	case DepositFundCollateral:
		buf := make([]byte, depositFundLen)
		buf[0] = byte(ins.Action)
		binary.BigEndian.PutUint64(buf[1:], ins.OptionID)
		binary.BigEndian.PutUint64(buf[9:], ins.CounterAmount)
		binary.BigEndian.PutUint64(buf[17:], ins.PremiumAmount)
		binary.BigEndian.PutUint64(buf[25:], ins.OfferDeadline)
		binary.BigEndian.PutUint64(buf[33:], ins.ExerciseDeadline)
		return buf
	default:
		buf := make([]byte, depositParticipateLen)
		buf[0] = byte(ins.Action)
		binary.BigEndian.PutUint64(buf[1:], ins.OptionID)
		return buf
	}
}

// DecodeDepositInstruction parses a deposit payload. Empty payloads, unknown
// tags and length mismatches are rejected; the caller turns the rejection
// into a rollback of the whole transfer.
func DecodeDepositInstruction(payload []byte) (*DepositInstruction, error) {
	if len(payload) < depositHeaderLen {
		return nil, ErrInvalidInstruction
	}
	ins := &DepositInstruction{Action: DepositAction(payload[0])}
	switch ins.Action {
	case DepositFundCollateral:
		if len(payload) != depositFundLen {
			return nil, ErrInvalidInstruction
		}
		ins.OptionID = binary.BigEndian.Uint64(payload[1:])
		ins.CounterAmount = binary.BigEndian.Uint64(payload[9:])
		ins.PremiumAmount = binary.BigEndian.Uint64(payload[17:])
		ins.OfferDeadline = binary.BigEndian.Uint64(payload[25:])
		ins.ExerciseDeadline = binary.BigEndian.Uint64(payload[33:])
	case DepositParticipate:
		if len(payload) != depositParticipateLen {
			return nil, ErrInvalidInstruction
		}
		ins.OptionID = binary.BigEndian.Uint64(payload[1:])
	case DepositBuyListed:
		if len(payload) != depositBuyLen {
			return nil, ErrInvalidInstruction
		}
		ins.OptionID = binary.BigEndian.Uint64(payload[1:])
	default:
		return nil, ErrInvalidInstruction
	}
	if ins.OptionID == 0 {
		return nil, ErrInvalidInstruction
	}
	return ins, nil
}

// HandleDeposit implements custody.DepositHandler. It runs after the custody
// ledger has moved the deposited asset into the vault; any error returned
// here reverses that move, so a rejected logical transition never strands the
// asset. Fungible assets never reach this path.
func (e *Engine) HandleDeposit(from [20]byte, asset custody.AssetRef, amount *big.Int, payload []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	if asset.Kind != custody.UniqueToken && asset.Kind != custody.MultiToken {
		return ErrInvalidAsset
	}
	ins, err := DecodeDepositInstruction(payload)
	if err != nil {
		return err
	}
	opt, err := e.loadOption(ins.OptionID)
	if err != nil {
		return err
	}
	switch ins.Action {
	case DepositFundCollateral:
		return e.fundFromDeposit(opt, from, asset, amount, ins)
	case DepositParticipate:
		return e.participateFromDeposit(opt, from, asset, amount)
	case DepositBuyListed:
		return e.buyFromDeposit(opt, from, asset, amount)
	default:
		return ErrInvalidInstruction
	}
}

func (e *Engine) fundFromDeposit(opt *Option, from [20]byte, asset custody.AssetRef, amount *big.Int, ins *DepositInstruction) error {
	if opt.Writer != from {
		return ErrUnauthorized
	}
	if opt.Funded {
		return ErrAlreadyFunded
	}
	if !asset.Equal(opt.Terms.Collateral) {
		return ErrInvalidInstruction
	}
	collateral := asset.NormalizeAmount(amount)
	if collateral.Sign() <= 0 {
		return ErrInvalidAmount
	}
	counter := new(big.Int).SetUint64(ins.CounterAmount)
	premium := new(big.Int).SetUint64(ins.PremiumAmount)
	if err := e.finalizeTerms(opt, collateral, counter, premium, ins.OfferDeadline, ins.ExerciseDeadline); err != nil {
		return err
	}
	opt.Funded = true
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewFundedEvent(opt))
	return nil
}

func (e *Engine) participateFromDeposit(opt *Option, from [20]byte, asset custody.AssetRef, amount *big.Int) error {
	if err := e.checkParticipation(opt, from); err != nil {
		return err
	}
	if !asset.Equal(opt.Terms.Premium) {
		return ErrInvalidInstruction
	}
	if asset.NormalizeAmount(amount).Cmp(opt.Terms.PremiumAmount) != 0 {
		return ErrInsufficientDeposit
	}
	opt.Participant = from
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewParticipatedEvent(opt))
	return nil
}

func (e *Engine) buyFromDeposit(opt *Option, from [20]byte, asset custody.AssetRef, amount *big.Int) error {
	if !opt.Listing.Active {
		return ErrNotListed
	}
	if from == opt.Participant {
		return ErrSelfDealing
	}
	if !asset.Equal(opt.Listing.Ask) {
		return ErrInvalidInstruction
	}
	if asset.NormalizeAmount(amount).Cmp(opt.Listing.AskAmount) != 0 {
		return ErrInsufficientDeposit
	}
	return e.settleSale(opt, from)
}
