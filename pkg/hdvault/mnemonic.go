package hdvault

import (
	"github.com/tyler-smith/go-bip39"
)

// NewMnemonicOpts is the struct given to NewMnemonic method
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize < 0 {
		return ErrInvalidMnemonic
	}
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidMnemonic
		}
	}
	return nil
}

// NewMnemonic returns a new BIP39 mnemonic with the given entropy size,
// defaulting to 128 bits (12 words).
func NewMnemonic(opts NewMnemonicOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func seedFromMnemonic(mnemonic string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(mnemonic, ""), nil
}
