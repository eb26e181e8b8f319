package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/darrenvechain/thorgo/crypto/hdwallet"
	"github.com/tyler-smith/go-bip39"

	"rhystmorgan/veContacts/internal/storage"
)

const (
	KeyringFile = "keyring.json"

	// VeChain coin type 818, external chain.
	derivationPathFormat = "m/44'/818'/0'/0/%d"
	entropyBits          = 128
)

var (
	ErrLocked          = errors.New("wallet is locked")
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrNoKeyring       = errors.New("keyring not found")
)

// PasswordPrompt asks the user for the wallet password. ok is false if they declined.
type PasswordPrompt func() (password string, ok bool)

type keyringFile struct {
	Sealed    *storage.EncryptedData `json:"sealed"`
	NextIndex uint32                 `json:"next_index"`
	Addresses []string               `json:"addresses,omitempty"`
}

// Keyring holds a sealed BIP39 mnemonic and hands out HD receiving addresses.
// The mnemonic is only in memory while unlocked.
type Keyring struct {
	path string
	log  *slog.Logger

	mu        sync.Mutex
	sealed    *storage.EncryptedData
	mnemonic  string
	nextIndex uint32
	addresses []string
	owned     map[string]struct{}
	prompt    PasswordPrompt
}

func newKeyring(path string, logger *slog.Logger) *Keyring {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keyring{
		path:  path,
		log:   logger.WithGroup("wallet"),
		owned: make(map[string]struct{}),
	}
}

// CreateKeyring generates a fresh mnemonic, seals it with password and saves it to path.
// The returned keyring is unlocked; the mnemonic is returned so it can be backed up.
func CreateKeyring(path, password string, logger *slog.Logger) (*Keyring, string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	k, err := ImportKeyring(path, mnemonic, password, logger)
	if err != nil {
		return nil, "", err
	}
	return k, mnemonic, nil
}

// ImportKeyring seals an existing mnemonic. An empty path keeps the keyring in memory.
func ImportKeyring(path, mnemonic, password string, logger *slog.Logger) (*Keyring, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	sealed, err := storage.Seal(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("failed to seal mnemonic: %w", err)
	}

	k := newKeyring(path, logger)
	k.sealed = sealed
	k.mnemonic = mnemonic
	if err := k.saveLocked(); err != nil {
		return nil, err
	}
	return k, nil
}

// OpenKeyring loads a keyring file. The keyring starts locked.
func OpenKeyring(path string, logger *slog.Logger) (*Keyring, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoKeyring
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring file: %w", err)
	}

	var file keyringFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keyring: %w", err)
	}
	if file.Sealed == nil {
		return nil, fmt.Errorf("keyring file %s has no sealed mnemonic", path)
	}

	k := newKeyring(path, logger)
	k.sealed = file.Sealed
	k.nextIndex = file.NextIndex
	for _, addr := range file.Addresses {
		k.addresses = append(k.addresses, addr)
		k.owned[strings.ToLower(addr)] = struct{}{}
	}
	return k, nil
}

func (k *Keyring) SetPasswordPrompt(prompt PasswordPrompt) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.prompt = prompt
}

func (k *Keyring) Unlock(password string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var mnemonic string
	if err := storage.Open(k.sealed, password, &mnemonic); err != nil {
		return fmt.Errorf("failed to unlock wallet: %w", err)
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}
	k.mnemonic = mnemonic
	return nil
}

func (k *Keyring) Lock() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.mnemonic = ""
}

func (k *Keyring) IsLocked() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mnemonic == ""
}

// TryUnlock returns true if the keyring is unlocked, prompting for the password if needed.
func (k *Keyring) TryUnlock() bool {
	k.mu.Lock()
	unlocked := k.mnemonic != ""
	prompt := k.prompt
	k.mu.Unlock()

	if unlocked {
		return true
	}
	if prompt == nil {
		return false
	}

	password, ok := prompt()
	if !ok {
		return false
	}
	if err := k.Unlock(password); err != nil {
		k.log.Warn("wallet unlock failed", "error", err)
		return false
	}
	return true
}

// GenerateReceivingAddress derives the next unused external address.
func (k *Keyring) GenerateReceivingAddress() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mnemonic == "" {
		return "", ErrLocked
	}

	index := k.nextIndex
	address, err := deriveAddress(k.mnemonic, index)
	if err != nil {
		return "", fmt.Errorf("failed to derive address %d: %w", index, err)
	}

	k.nextIndex++
	k.addresses = append(k.addresses, address)
	k.owned[strings.ToLower(address)] = struct{}{}

	if err := k.saveLocked(); err != nil {
		k.nextIndex--
		k.addresses = k.addresses[:len(k.addresses)-1]
		delete(k.owned, strings.ToLower(address))
		return "", err
	}

	k.log.Info("receiving address generated", "index", index, "address", address)
	return address, nil
}

// IsMine reports whether address was generated by this keyring.
func (k *Keyring) IsMine(address string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.owned[strings.ToLower(address)]
	return ok
}

func (k *Keyring) Addresses() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, len(k.addresses))
	copy(out, k.addresses)
	return out
}

func (k *Keyring) saveLocked() error {
	if k.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(keyringFile{
		Sealed:    k.sealed,
		NextIndex: k.nextIndex,
		Addresses: k.addresses,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keyring: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("failed to create keyring directory: %w", err)
	}
	if err := os.WriteFile(k.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keyring file: %w", err)
	}
	return nil
}

func deriveAddress(mnemonic string, index uint32) (string, error) {
	derivationPath, err := hdwallet.ParseDerivationPath(fmt.Sprintf(derivationPathFormat, index))
	if err != nil {
		return "", err
	}

	hdWallet, err := hdwallet.FromMnemonicAt(mnemonic, derivationPath)
	if err != nil {
		return "", err
	}

	return hdWallet.Address().Hex(), nil
}
