package options

import (
	"math/big"

	"github.com/EgeCaner/OptionWizard/native/custody"
)

// List offers the option position for resale at the given ask. Only the
// current participant may list, and only while the option has not reached a
// terminal outcome.
func (e *Engine) List(id uint64, caller [20]byte, ask custody.AssetRef, askAmount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if !opt.HasParticipant() || opt.Participant != caller {
		return ErrUnauthorized
	}
	if opt.Settled() {
		return ErrAlreadySettled
	}
	if opt.Listing.Active {
		return ErrAlreadyListed
	}
	if err := ask.Validate(); err != nil {
		return err
	}
	amount := ask.NormalizeAmount(askAmount)
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	opt.Listing = ListingInfo{Ask: ask, AskAmount: amount, Active: true}
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewListedEvent(opt))
	return nil
}

// Delist withdraws an active listing. Only the current participant may
// delist.
func (e *Engine) Delist(id uint64, caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if !opt.HasParticipant() || opt.Participant != caller {
		return ErrUnauthorized
	}
	if !opt.Listing.Active {
		return ErrNotListed
	}
	opt.Listing.Active = false
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewDelistedEvent(opt))
	return nil
}

// Buy settles an active listing with a fungible ask: the ask amount is pulled
// from the buyer, the seller is credited on the pull-payment ledger and the
// position moves to the buyer. Unique and multi-token asks settle through the
// deposit entrypoint instead.
func (e *Engine) Buy(id uint64, buyer [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	opt, err := e.loadOption(id)
	if err != nil {
		return err
	}
	if !opt.Listing.Active {
		return ErrNotListed
	}
	if opt.Listing.Ask.Kind != custody.Fungible {
		return ErrInvalidAsset
	}
	if buyer == opt.Participant {
		return ErrSelfDealing
	}
	if err := e.bank.CreditFrom(opt.Listing.Ask, buyer, opt.Listing.AskAmount); err != nil {
		return err
	}
	return e.settleSale(opt, buyer)
}

// settleSale records the proceeds credit and reassigns the position. The ask
// asset is already in engine custody when this runs, on both the pull path
// and the deposit path.
func (e *Engine) settleSale(opt *Option, buyer [20]byte) error {
	seller := opt.Participant
	if err := e.state.CreditAdd(seller, opt.Listing.Ask, opt.Listing.AskAmount); err != nil {
		return err
	}
	opt.Participant = buyer
	opt.Listing.Active = false
	if err := e.storeOption(opt); err != nil {
		return err
	}
	e.emit(NewPositionTransferredEvent(opt, seller, buyer, opt.Listing.AskAmount))
	return nil
}

// Withdraw pulls a credited balance out of the engine. The caller must name
// the exact credited amount; over- and under-specified withdrawals are
// rejected rather than partially honoured.
func (e *Engine) Withdraw(caller [20]byte, asset custody.AssetRef, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	credited, err := e.state.CreditBalance(caller, asset)
	if err != nil {
		return err
	}
	if credited == nil || credited.Sign() == 0 {
		return ErrNotFound
	}
	requested := cloneBigInt(amount)
	if requested.Cmp(credited) != 0 {
		return ErrCreditMismatch
	}
	if err := e.state.CreditClear(caller, asset); err != nil {
		return err
	}
	if err := e.bank.Give(asset, caller, requested); err != nil {
		return err
	}
	e.emit(NewProceedsWithdrawnEvent(asset, caller, requested))
	return nil
}

// CreditOf reports the caller's outstanding credit for an asset.
func (e *Engine) CreditOf(owner [20]byte, asset custody.AssetRef) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.CreditBalance(owner, asset)
}
