package custody

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

var (
	// ErrInsufficientBalance is returned when a holder cannot cover a move.
	ErrInsufficientBalance = errors.New("custody: insufficient balance")
	// ErrNotOwner is returned when a unique token move names the wrong owner.
	ErrNotOwner = errors.New("custody: caller does not own token")
	// ErrInvalidAmount is returned for nil, zero or negative move quantities.
	ErrInvalidAmount = errors.New("custody: amount must be positive")
	// ErrPushUnsupported is returned when a fungible asset is pushed through
	// the deposit path. Fungible assets move by authorized pull only.
	ErrPushUnsupported = errors.New("custody: fungible assets transfer by pull")
)

type uniqueKey struct {
	contract [20]byte
	tokenID  uint64
}

type multiKey struct {
	contract [20]byte
	tokenID  uint64
	holder   [20]byte
}

type fungibleKey struct {
	contract [20]byte
	holder   [20]byte
}

// Ledger is an in-process asset book covering the three supported kinds. It
// plays the role the external token contracts play for the on-chain engine:
// balances and ownership live here, the options engine only directs moves.
// The ledger is bound to a single vault identity representing engine custody.
type Ledger struct {
	mu       sync.Mutex
	vault    [20]byte
	fungible map[fungibleKey]*big.Int
	unique   map[uniqueKey][20]byte
	multi    map[multiKey]*big.Int
	handler  DepositHandler
}

// NewLedger creates an empty ledger whose engine custody account is vault.
func NewLedger(vault [20]byte) *Ledger {
	return &Ledger{
		vault:    vault,
		fungible: make(map[fungibleKey]*big.Int),
		unique:   make(map[uniqueKey][20]byte),
		multi:    make(map[multiKey]*big.Int),
	}
}

// Vault returns the custody identity the ledger was bound to.
func (l *Ledger) Vault() [20]byte { return l.vault }

// SetDepositHandler registers the consumer of push-deposits into the vault.
func (l *Ledger) SetDepositHandler(h DepositHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
}

// Mint credits the holder with the asset. Unique tokens must be unassigned.
func (l *Ledger) Mint(asset AssetRef, to [20]byte, amount *big.Int) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	switch asset.Kind {
	case UniqueToken:
		key := uniqueKey{contract: asset.Contract, tokenID: asset.TokenID}
		if _, ok := l.unique[key]; ok {
			return fmt.Errorf("custody: token %d already minted", asset.TokenID)
		}
		l.unique[key] = to
		return nil
	case Fungible:
		amt := asset.NormalizeAmount(amount)
		if amt.Sign() <= 0 {
			return ErrInvalidAmount
		}
		key := fungibleKey{contract: asset.Contract, holder: to}
		l.fungible[key] = addBalance(l.fungible[key], amt)
		return nil
	case MultiToken:
		amt := asset.NormalizeAmount(amount)
		if amt.Sign() <= 0 {
			return ErrInvalidAmount
		}
		key := multiKey{contract: asset.Contract, tokenID: asset.TokenID, holder: to}
		l.multi[key] = addBalance(l.multi[key], amt)
		return nil
	default:
		return fmt.Errorf("custody: invalid asset kind %d", uint8(asset.Kind))
	}
}

// BalanceOf returns the holder's balance of a fungible or multi-token asset.
// Unique tokens report 1 for the owner and 0 otherwise.
func (l *Ledger) BalanceOf(asset AssetRef, holder [20]byte) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch asset.Kind {
	case Fungible:
		return cloneBalance(l.fungible[fungibleKey{contract: asset.Contract, holder: holder}])
	case MultiToken:
		return cloneBalance(l.multi[multiKey{contract: asset.Contract, tokenID: asset.TokenID, holder: holder}])
	case UniqueToken:
		if owner, ok := l.unique[uniqueKey{contract: asset.Contract, tokenID: asset.TokenID}]; ok && owner == holder {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	default:
		return big.NewInt(0)
	}
}

// OwnerOf returns the current owner of a unique token.
func (l *Ledger) OwnerOf(contract [20]byte, tokenID uint64) ([20]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.unique[uniqueKey{contract: contract, tokenID: tokenID}]
	return owner, ok
}

// Take implements the Bank interface: pull into engine custody.
func (l *Ledger) Take(asset AssetRef, from [20]byte, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(asset, from, l.vault, amount)
}

// Give implements the Bank interface: release from engine custody.
func (l *Ledger) Give(asset AssetRef, to [20]byte, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(asset, l.vault, to, amount)
}

// CreditFrom implements the Bank interface as an alias of Take.
func (l *Ledger) CreditFrom(asset AssetRef, from [20]byte, amount *big.Int) error {
	return l.Take(asset, from, amount)
}

// SafeTransfer moves a unique or multi-token asset from the holder into the
// vault and hands it to the registered deposit handler together with the
// instruction payload. When the handler rejects, the custody move is reversed
// in full so a failed logical transition never strands the asset.
func (l *Ledger) SafeTransfer(asset AssetRef, from [20]byte, amount *big.Int, payload []byte) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	if asset.Kind == Fungible {
		return ErrPushUnsupported
	}
	l.mu.Lock()
	handler := l.handler
	if err := l.move(asset, from, l.vault, amount); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()
	if handler == nil {
		return nil
	}
	moved := asset.NormalizeAmount(amount)
	if err := handler.HandleDeposit(from, asset, moved, payload); err != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		if undoErr := l.move(asset, l.vault, from, moved); undoErr != nil {
			return fmt.Errorf("custody: deposit rollback failed: %w", undoErr)
		}
		return err
	}
	return nil
}

// move applies a transfer between two holders. Callers hold the lock.
func (l *Ledger) move(asset AssetRef, from, to [20]byte, amount *big.Int) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	switch asset.Kind {
	case UniqueToken:
		key := uniqueKey{contract: asset.Contract, tokenID: asset.TokenID}
		owner, ok := l.unique[key]
		if !ok || owner != from {
			return ErrNotOwner
		}
		l.unique[key] = to
		return nil
	case Fungible:
		amt := asset.NormalizeAmount(amount)
		if amt.Sign() <= 0 {
			return ErrInvalidAmount
		}
		fromKey := fungibleKey{contract: asset.Contract, holder: from}
		if cloneBalance(l.fungible[fromKey]).Cmp(amt) < 0 {
			return ErrInsufficientBalance
		}
		l.fungible[fromKey] = subBalance(l.fungible[fromKey], amt)
		toKey := fungibleKey{contract: asset.Contract, holder: to}
		l.fungible[toKey] = addBalance(l.fungible[toKey], amt)
		return nil
	case MultiToken:
		amt := asset.NormalizeAmount(amount)
		if amt.Sign() <= 0 {
			return ErrInvalidAmount
		}
		fromKey := multiKey{contract: asset.Contract, tokenID: asset.TokenID, holder: from}
		if cloneBalance(l.multi[fromKey]).Cmp(amt) < 0 {
			return ErrInsufficientBalance
		}
		l.multi[fromKey] = subBalance(l.multi[fromKey], amt)
		toKey := multiKey{contract: asset.Contract, tokenID: asset.TokenID, holder: to}
		l.multi[toKey] = addBalance(l.multi[toKey], amt)
		return nil
	default:
		return fmt.Errorf("custody: invalid asset kind %d", uint8(asset.Kind))
	}
}

func cloneBalance(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func addBalance(current, amt *big.Int) *big.Int {
	return new(big.Int).Add(cloneBalance(current), amt)
}

func subBalance(current, amt *big.Int) *big.Int {
	return new(big.Int).Sub(cloneBalance(current), amt)
}
