// Package hdwallet derives Ethereum accounts from a BIP-39 mnemonic along a
// BIP-32 path. Derivation is a pure function of (mnemonic, path, index).
package hdwallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"
)

// DefaultBasePath is the BIP-44 Ethereum external chain.
const DefaultBasePath = "m/44'/60'/0'/0"

var (
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	ErrInvalidPath     = errors.New("invalid derivation path")
	ErrHardenedIndex   = errors.New("account index must be below the hardened range")
)

// Account is a derived key position and its address.
type Account struct {
	Index   uint32
	Path    string
	Address string
}

// Deriver produces accounts below a fixed base path. It is safe for
// concurrent use.
type Deriver struct {
	basePath string

	mu   sync.Mutex
	base *hdkeychain.ExtendedKey
}

// NewDeriver validates the mnemonic, derives its seed with an empty
// passphrase and walks it down to basePath.
func NewDeriver(mnemonic, basePath string) (*Deriver, error) {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	seed, err := bip39.NewSeedWithErrorChecking(strings.TrimSpace(mnemonic), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	segments, err := ParsePath(basePath)
	if err != nil {
		return nil, err
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	for _, seg := range segments {
		key, err = key.Derive(seg)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", basePath, err)
		}
	}

	return &Deriver{basePath: strings.TrimSuffix(basePath, "/"), base: key}, nil
}

// BasePath returns the path accounts are derived below.
func (d *Deriver) BasePath() string { return d.basePath }

// Derive returns the account at basePath/index.
func (d *Deriver) Derive(index uint32) (Account, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return Account{}, ErrHardenedIndex
	}

	// hdkeychain caches the parent public key on first use.
	d.mu.Lock()
	child, err := d.base.Derive(index)
	d.mu.Unlock()
	if err != nil {
		return Account{}, fmt.Errorf("derive index %d: %w", index, err)
	}

	pub, err := child.ECPubKey()
	if err != nil {
		return Account{}, fmt.Errorf("public key: %w", err)
	}

	return Account{
		Index:   index,
		Path:    fmt.Sprintf("%s/%d", d.basePath, index),
		Address: PublicKeyToAddress(pub.SerializeUncompressed()),
	}, nil
}

// PublicKeyToAddress turns a 65-byte uncompressed secp256k1 key into its
// checksummed address.
func PublicKeyToAddress(uncompressed []byte) string {
	h := keccak256(uncompressed[1:])
	return ChecksumAddress(h[12:])
}

// ChecksumAddress renders a 20-byte address in EIP-55 mixed case with a
// lowercase 0x prefix.
func ChecksumAddress(addr []byte) string {
	lower := hex.EncodeToString(addr)
	hash := keccak256([]byte(lower))

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// ParsePath splits "m/44'/60'/0'/0" into child indexes. A trailing ' or h
// marks a hardened segment.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSuffix(strings.TrimSpace(path), "/"), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m", ErrInvalidPath, path)
	}

	out := make([]uint32, 0, len(parts)-1)
	for _, p := range parts[1:] {
		hardened := strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h")
		p = strings.TrimRight(p, "'h")
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil || uint32(n) >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("%w: segment %q", ErrInvalidPath, p)
		}
		idx := uint32(n)
		if hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		out = append(out, idx)
	}
	return out, nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
