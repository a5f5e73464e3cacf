package wallet

import (
	"fmt"
	"maps"
	"sync"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/bitfsorg/txbuilder-go/tx"
)

const (
	// BIP44 path constants. 236 is the registered BSV coin type.
	PurposeBIP44 = 44
	CoinTypeBSV  = 236

	// Chain indices.
	ExternalChain = 0 // Receive addresses
	InternalChain = 1 // Change addresses

	// MaxIndex is the largest non-hardened BIP32 index.
	MaxIndex = 1<<31 - 1

	// BIP32 hardened offset.
	Hardened = 0x80000000
)

// KeyPair holds a derived key pair and its P2PKH address.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Address    string         `json:"address"`
	Path       string         `json:"path"` // Human-readable derivation path
}

// KeyRing derives the keys of one BIP44 account and remembers every key it
// has handed out, by address, so a built transaction can be signed with
// tx.Builder.SignWithKeys.
//
// A KeyRing is safe for concurrent use.
type KeyRing struct {
	account    *bip32.ExtendedKey
	accountIdx uint32
	mainnet    bool

	mu      sync.RWMutex
	derived map[string]*ec.PrivateKey
}

// NewKeyRing creates a KeyRing for account from a BIP39 seed.
func NewKeyRing(seed []byte, account uint32, mainnet bool) (*KeyRing, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if account > MaxIndex {
		return nil, fmt.Errorf("%w: account %d", ErrIndexOutOfRange, account)
	}

	net := &chaincfg.TestNet
	if mainnet {
		net = &chaincfg.MainNet
	}

	master, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	accountKey, err := deriveAccount(master, account)
	if err != nil {
		return nil, err
	}

	return &KeyRing{
		account:    accountKey,
		accountIdx: account,
		mainnet:    mainnet,
		derived:    make(map[string]*ec.PrivateKey),
	}, nil
}

// NewKeyRingFromMnemonic is NewKeyRing for a BIP39 mnemonic and passphrase.
func NewKeyRingFromMnemonic(mnemonic, passphrase string, account uint32, mainnet bool) (*KeyRing, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewKeyRing(seed, account, mainnet)
}

// deriveAccount derives the account-level key: m/44'/236'/account'
func deriveAccount(master *bip32.ExtendedKey, account uint32) (*bip32.ExtendedKey, error) {
	// m/44'
	purpose, err := master.Child(PurposeBIP44 + Hardened)
	if err != nil {
		return nil, fmt.Errorf("%w: purpose derivation: %w", ErrDerivationFailed, err)
	}

	// m/44'/236'
	coinType, err := purpose.Child(CoinTypeBSV + Hardened)
	if err != nil {
		return nil, fmt.Errorf("%w: coin type derivation: %w", ErrDerivationFailed, err)
	}

	// m/44'/236'/account'
	accountKey, err := coinType.Child(account + Hardened)
	if err != nil {
		return nil, fmt.Errorf("%w: account derivation: %w", ErrDerivationFailed, err)
	}

	return accountKey, nil
}

// DeriveKey derives the key at m/44'/236'/account'/chain/index and records
// it for SigningKeys.
func (k *KeyRing) DeriveKey(chain, index uint32) (*KeyPair, error) {
	if chain != ExternalChain && chain != InternalChain {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChain, chain)
	}
	if index > MaxIndex {
		return nil, fmt.Errorf("%w: index %d", ErrIndexOutOfRange, index)
	}

	chainKey, err := k.account.Child(chain)
	if err != nil {
		return nil, fmt.Errorf("%w: chain derivation: %w", ErrDerivationFailed, err)
	}

	childKey, err := chainKey.Child(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index derivation: %w", ErrDerivationFailed, err)
	}

	path := fmt.Sprintf("m/44'/%d'/%d'/%d/%d", CoinTypeBSV, k.accountIdx, chain, index)
	kp, err := k.extKeyToKeyPair(childKey, path)
	if err != nil {
		return nil, err
	}

	k.mu.Lock()
	k.derived[kp.Address] = kp.PrivateKey
	k.mu.Unlock()

	return kp, nil
}

// ReceiveKey derives receive address index.
func (k *KeyRing) ReceiveKey(index uint32) (*KeyPair, error) {
	return k.DeriveKey(ExternalChain, index)
}

// ChangeKey derives change address index.
func (k *KeyRing) ChangeKey(index uint32) (*KeyPair, error) {
	return k.DeriveKey(InternalChain, index)
}

// Key returns the private key previously derived for address.
func (k *KeyRing) Key(address string) (*ec.PrivateKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.derived[address]
	return key, ok
}

// SigningKeys returns every key derived so far, by address, in the form
// tx.Builder.SignWithKeys takes.
func (k *KeyRing) SigningKeys() map[string]*ec.PrivateKey {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return maps.Clone(k.derived)
}

// Mainnet reports which address encoding the KeyRing derives.
func (k *KeyRing) Mainnet() bool {
	return k.mainnet
}

// extKeyToKeyPair converts a BIP32 extended key to a KeyPair.
func (k *KeyRing) extKeyToKeyPair(extKey *bip32.ExtendedKey, path string) (*KeyPair, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	pubKey := privKey.PubKey()
	address, err := tx.AddressFromPubKey(pubKey, k.mainnet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		Address:    address,
		Path:       path,
	}, nil
}
