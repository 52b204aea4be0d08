package state

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/EgeCaner/OptionWizard/native/custody"
	"github.com/EgeCaner/OptionWizard/native/options"
	"github.com/EgeCaner/OptionWizard/storage"
)

var (
	optionKeyPrefix = []byte("options/record/")
	creditKeyPrefix = []byte("options/credit/")
	sequenceKey     = []byte("options/meta/seq")
)

// Manager persists the option registry and the credit ledger over a
// key-value database. It implements the state interface the options engine
// operates against, so hosts can run the engine over an in-memory database in
// tests and LevelDB in deployments.
type Manager struct {
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func optionKey(id uint64) []byte {
	key := make([]byte, len(optionKeyPrefix)+8)
	copy(key, optionKeyPrefix)
	binary.BigEndian.PutUint64(key[len(optionKeyPrefix):], id)
	return key
}

// creditKey derives a fixed-width key for an (owner, asset) credit entry.
// Hashing keeps key length independent of the asset encoding.
func creditKey(owner [20]byte, asset custody.AssetRef) []byte {
	var kindAndID [9]byte
	kindAndID[0] = byte(asset.Kind)
	binary.BigEndian.PutUint64(kindAndID[1:], asset.TokenID)
	digest := ethcrypto.Keccak256Hash(owner[:], asset.Contract[:], kindAndID[:])
	key := make([]byte, len(creditKeyPrefix)+len(digest))
	copy(key, creditKeyPrefix)
	copy(key[len(creditKeyPrefix):], digest[:])
	return key
}

// OptionPut sanitises and stores the record.
func (m *Manager) OptionPut(opt *options.Option) error {
	sanitized, err := options.SanitizeOption(opt)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(sanitized)
	if err != nil {
		return fmt.Errorf("state: encode option: %w", err)
	}
	return m.db.Put(optionKey(sanitized.ID), encoded)
}

// OptionGet loads the record with the given id.
func (m *Manager) OptionGet(id uint64) (*options.Option, bool) {
	raw, err := m.db.Get(optionKey(id))
	if err != nil {
		return nil, false
	}
	opt := new(options.Option)
	if err := json.Unmarshal(raw, opt); err != nil {
		return nil, false
	}
	return opt, true
}

// NextOptionID increments and returns the sequential id counter. The first
// id issued is 1.
func (m *Manager) NextOptionID() (uint64, error) {
	var current uint64
	raw, err := m.db.Get(sequenceKey)
	switch {
	case err == nil:
		if len(raw) != 8 {
			return 0, fmt.Errorf("state: corrupt option sequence")
		}
		current = binary.BigEndian.Uint64(raw)
	case errors.Is(err, storage.ErrKeyNotFound):
	default:
		return 0, err
	}
	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := m.db.Put(sequenceKey, buf); err != nil {
		return 0, err
	}
	return next, nil
}

// CreditAdd increases the owner's credit for the asset.
func (m *Manager) CreditAdd(owner [20]byte, asset custody.AssetRef, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: credit amount must be positive")
	}
	current, err := m.CreditBalance(owner, asset)
	if err != nil {
		return err
	}
	updated := new(big.Int).Add(current, amount)
	return m.db.Put(creditKey(owner, asset), updated.Bytes())
}

// CreditBalance returns the owner's outstanding credit for the asset. Absent
// entries report zero.
func (m *Manager) CreditBalance(owner [20]byte, asset custody.AssetRef) (*big.Int, error) {
	raw, err := m.db.Get(creditKey(owner, asset))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// CreditClear zeroes the owner's credit for the asset.
func (m *Manager) CreditClear(owner [20]byte, asset custody.AssetRef) error {
	return m.db.Put(creditKey(owner, asset), big.NewInt(0).Bytes())
}
