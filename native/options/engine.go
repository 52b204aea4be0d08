package options

import (
	"math/big"
	"sync"
	"time"

	"github.com/EgeCaner/OptionWizard/core/events"
	"github.com/EgeCaner/OptionWizard/core/types"
	nativecommon "github.com/EgeCaner/OptionWizard/native/common"
	"github.com/EgeCaner/OptionWizard/native/custody"
)

const moduleName = "options"

// engineState is the narrow persistence surface the engine mutates. The
// option registry and the credit ledger are the only shared mutable state;
// every write passes through the engine operations.
type engineState interface {
	OptionPut(*Option) error
	OptionGet(id uint64) (*Option, bool)
	NextOptionID() (uint64, error)
	CreditAdd(owner [20]byte, asset custody.AssetRef, amount *big.Int) error
	CreditBalance(owner [20]byte, asset custody.AssetRef) (*big.Int, error)
	CreditClear(owner [20]byte, asset custody.AssetRef) error
}

type optionEvent struct {
	evt *types.Event
}

func (e optionEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e optionEvent) Event() *types.Event { return e.evt }

// Engine wires the option lifecycle, the deposit multiplexer and the
// secondary market to external state, custody and event emission. One mutex
// serialises state-changing calls; each call commits fully or leaves state
// untouched.
type Engine struct {
	mu      sync.Mutex
	state   engineState
	bank    custody.Bank
	emitter events.Emitter
	nowFn   func() uint64
	pauses  nativecommon.PauseView
}

// NewEngine creates an options engine with a no-op emitter and a wall-clock
// progress source. Hosts configure state, custody and emission via the
// setters before first use.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetBank configures the custody bank assets are moved through.
func (e *Engine) SetBank(bank custody.Bank) { e.bank = bank }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the progress counter used for deadline comparison.
// Hosts on a block-ordered ledger supply the block height; tests supply a
// deterministic counter.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// SetPauses configures the administrative pause view guarding every
// state-changing operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(optionEvent{evt: event})
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.bank == nil {
		return errNilBank
	}
	return nativecommon.Guard(e.pauses, moduleName)
}

func (e *Engine) loadOption(id uint64) (*Option, error) {
	opt, ok := e.state.OptionGet(id)
	if !ok {
		return nil, ErrNotFound
	}
	return opt, nil
}

func (e *Engine) storeOption(opt *Option) error {
	sanitized, err := SanitizeOption(opt)
	if err != nil {
		return err
	}
	return e.state.OptionPut(sanitized)
}

// Offer registers a new option with its asset references and no economic
// terms yet. The record stays in the offered state until the writer funds the
// collateral, either through SetOptionParams (fungible collateral) or through
// a FundCollateral deposit (unique or multi-token collateral).
func (e *Engine) Offer(writer [20]byte, collateral, counter, premium custody.AssetRef) (*Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return nil, err
	}
	if writer == ([20]byte{}) {
		return nil, ErrUnauthorized
	}
	for _, asset := range []custody.AssetRef{collateral, counter, premium} {
		if err := asset.Validate(); err != nil {
			return nil, err
		}
	}
	id, err := e.state.NextOptionID()
	if err != nil {
		return nil, err
	}
	opt := &Option{
		ID:     id,
		Writer: writer,
		Terms: OptionTerms{
			Collateral:       collateral,
			Counter:          counter,
			Premium:          premium,
			CollateralAmount: big.NewInt(0),
			CounterAmount:    big.NewInt(0),
			PremiumAmount:    big.NewInt(0),
		},
		Listing:   ListingInfo{AskAmount: big.NewInt(0)},
		CreatedAt: e.now(),
	}
	if err := e.storeOption(opt); err != nil {
		return nil, err
	}
	e.emit(NewOfferedEvent(opt))
	return opt.Clone(), nil
}

// SetOptionParams finalises the numeric terms and deadlines of an offer and
// pulls the collateral from the writer. This is the fungible-collateral
// funding path; unique and multi-token collateral arrives through the deposit
// entrypoint instead.
func (e *Engine) SetOptionParams(id uint64, caller [20]byte, collateralAmount, counterAmount, premiumAmount *big.Int, offerDeadline, exerciseDeadline uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if opt.Writer != caller {
		return ErrUnauthorized
	}
	if opt.Funded {
		return ErrAlreadyFunded
	}
	if opt.Terms.Collateral.Kind != custody.Fungible {
		return ErrInvalidAsset
	}
	collateral := opt.Terms.Collateral.NormalizeAmount(collateralAmount)
	if collateral.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.finalizeTerms(opt, collateral, counterAmount, premiumAmount, offerDeadline, exerciseDeadline); err != nil {
		return err
	}
	if err := e.bank.CreditFrom(opt.Terms.Collateral, caller, collateral); err != nil {
		return err
	}
	opt.Funded = true
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewFundedEvent(opt))
	return nil
}

// finalizeTerms validates deadlines and amount fields and writes them into
// the record. Callers decide how the collateral itself is custodied.
func (e *Engine) finalizeTerms(opt *Option, collateralAmount, counterAmount, premiumAmount *big.Int, offerDeadline, exerciseDeadline uint64) error {
	now := e.now()
	if offerDeadline <= now || exerciseDeadline <= offerDeadline {
		return ErrInvalidDeadline
	}
	counter := opt.Terms.Counter.NormalizeAmount(counterAmount)
	premium := opt.Terms.Premium.NormalizeAmount(premiumAmount)
	if counter.Sign() <= 0 || premium.Sign() <= 0 {
		return ErrInvalidAmount
	}
	opt.Terms.CollateralAmount = collateralAmount
	opt.Terms.CounterAmount = counter
	opt.Terms.PremiumAmount = premium
	opt.Terms.OfferDeadline = offerDeadline
	opt.Terms.ExerciseDeadline = exerciseDeadline
	return nil
}

// Participate joins a funded offer by paying the premium. This is the
// fungible-premium path; unique and multi-token premiums arrive through the
// deposit entrypoint.
func (e *Engine) Participate(id uint64, caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if err := e.checkParticipation(opt, caller); err != nil {
		return err
	}
	if opt.Terms.Premium.Kind != custody.Fungible {
		return ErrInvalidAsset
	}
	if err := e.bank.CreditFrom(opt.Terms.Premium, caller, opt.Terms.PremiumAmount); err != nil {
		return err
	}
	opt.Participant = caller
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewParticipatedEvent(opt))
	return nil
}

func (e *Engine) checkParticipation(opt *Option, caller [20]byte) error {
	if !opt.Funded {
		return ErrNotFunded
	}
	if caller == opt.Writer {
		return ErrSelfDealing
	}
	if opt.HasParticipant() {
		return ErrAlreadyParticipated
	}
	if e.now() >= opt.Terms.OfferDeadline {
		return ErrDeadlinePassed
	}
	return nil
}

// WithdrawPremium releases the held premium to the writer. Valid exactly once
// per option, and only after a participant joined.
func (e *Engine) WithdrawPremium(id uint64, caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if opt.Writer != caller {
		return ErrUnauthorized
	}
	if !opt.HasParticipant() {
		return ErrNoParticipant
	}
	if opt.PremiumWithdrawn {
		return ErrAlreadySettled
	}
	if err := e.bank.Give(opt.Terms.Premium, caller, opt.Terms.PremiumAmount); err != nil {
		return err
	}
	opt.PremiumWithdrawn = true
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewPremiumWithdrawnEvent(opt, opt.Terms.PremiumAmount))
	return nil
}

// Exercise swaps the counter asset for the custodied collateral. Participant
// only, strictly before the exercise deadline.
func (e *Engine) Exercise(id uint64, caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if !opt.Funded {
		return ErrNotFunded
	}
	if !opt.HasParticipant() {
		return ErrNoParticipant
	}
	if opt.Participant != caller {
		return ErrUnauthorized
	}
	if opt.Settled() {
		return ErrAlreadySettled
	}
	if e.now() >= opt.Terms.ExerciseDeadline {
		return ErrDeadlinePassed
	}
	if err := e.bank.Take(opt.Terms.Counter, caller, opt.Terms.CounterAmount); err != nil {
		return err
	}
	if err := e.bank.Give(opt.Terms.Collateral, caller, opt.Terms.CollateralAmount); err != nil {
		return err
	}
	opt.Exercised = true
	opt.Listing.Active = false
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewExercisedEvent(opt))
	return nil
}

// WithdrawCounterAsset releases the counter asset paid at exercise to the
// writer. Valid exactly once, only after exercise.
func (e *Engine) WithdrawCounterAsset(id uint64, caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if opt.Writer != caller {
		return ErrUnauthorized
	}
	if !opt.Exercised {
		return ErrNotExercised
	}
	if opt.CounterWithdrawn {
		return ErrAlreadySettled
	}
	if err := e.bank.Give(opt.Terms.Counter, caller, opt.Terms.CounterAmount); err != nil {
		return err
	}
	opt.CounterWithdrawn = true
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewCounterWithdrawnEvent(opt, opt.Terms.CounterAmount))
	return nil
}

// RefundCollateral returns the collateral to the writer once exercise can no
// longer happen: after the exercise deadline, or after the offer deadline
// when nobody participated. The transition commits once; repeat calls
// succeed and report a zero amount so callers can poll without special
// casing.
func (e *Engine) RefundCollateral(id uint64, caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if opt.Writer != caller {
		return ErrUnauthorized
	}
	if !opt.Funded {
		return ErrNotFunded
	}
	if opt.Exercised {
		return ErrAlreadySettled
	}
	if opt.CollateralRefunded {
		e.emit(NewCollateralRefundedEvent(opt, big.NewInt(0)))
		return nil
	}
	unlock := opt.Terms.ExerciseDeadline
	if !opt.HasParticipant() {
		unlock = opt.Terms.OfferDeadline
	}
	if e.now() < unlock {
		return ErrDeadlineNotReached
	}
	if err := e.bank.Give(opt.Terms.Collateral, caller, opt.Terms.CollateralAmount); err != nil {
		return err
	}
	opt.CollateralRefunded = true
	opt.Listing.Active = false
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewCollateralRefundedEvent(opt, opt.Terms.CollateralAmount))
	return nil
}

// GetOption returns a copy of the stored record.
func (e *Engine) GetOption(id uint64) (*Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.loadOption(id)
}
