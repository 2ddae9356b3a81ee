package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nguyenkha/demo-mpc/internal/bip32"
	"github.com/nguyenkha/demo-mpc/internal/test"
	"github.com/nguyenkha/demo-mpc/pkg/ecdsa"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/reconstruct"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/tweak"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var demo struct {
	parties    int
	threshold  int
	signers    []uint
	message    string
	hash       string
	derive     string
	chainCode  string
	fake       bool
	safePrimes bool
	reveal     bool
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run key generation and signing between all parties in a single process",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func init() {
	f := demoCmd.Flags()
	f.IntVarP(&demo.parties, "parties", "n", 3, "number of parties")
	f.IntVarP(&demo.threshold, "threshold", "t", 1, "threshold, any t+1 parties can sign")
	f.UintSliceVarP(&demo.signers, "signers", "s", []uint{1, 2}, "IDs of the t+1 signers, in signing order")
	f.StringVarP(&demo.message, "message", "m", "hello", "message to sign")
	f.StringVar(&demo.hash, "hash", "sha256", "message digest: sha256 or keccak256")
	f.StringVar(&demo.derive, "derive", "", "non-hardened BIP32 path to derive before signing, e.g. 0/0/123")
	f.StringVar(&demo.chainCode, "chain-code", "", "hex chain code for --derive, defaults to SHA-256 of the public key")
	f.BoolVar(&demo.fake, "fake", false, "deal the key from a single dealer instead of running key generation")
	f.BoolVar(&demo.safePrimes, "safe-primes", false, "use safe primes for the Paillier moduli")
	f.BoolVar(&demo.reveal, "reveal", false, "reconstruct and print the private key")
}

func digest(hash string, message []byte) ([]byte, error) {
	switch hash {
	case "sha256":
		d := sha256.Sum256(message)
		return d[:], nil
	case "keccak256":
		return ecdsa.Keccak256(message), nil
	default:
		return nil, fmt.Errorf("unknown hash %q", hash)
	}
}

func runDemo(cmd *cobra.Command, _ []string) error {
	parameters := config.Parameters{Threshold: demo.threshold, ShareCount: demo.parties}
	if err := parameters.Validate(); err != nil {
		return err
	}
	signers := make(party.IDSlice, len(demo.signers))
	for i, s := range demo.signers {
		signers[i] = party.ID(s)
	}
	if len(signers) == 0 {
		return config.ErrSignerCount
	}
	if err := parameters.ValidateSigners(signers, signers[0]); err != nil {
		return err
	}
	m, err := digest(demo.hash, []byte(demo.message))
	if err != nil {
		return err
	}

	pl := pool.NewPool(workers)
	defer pl.TearDown()

	var keys []*config.LocalKey
	if demo.fake {
		keys, err = config.FakeData(parameters, rand.Reader, pl)
	} else {
		log.Info().
			Int("parties", demo.parties).
			Int("threshold", demo.threshold).
			Int("workers", pl.Workers()).
			Msg("running key generation")
		keys, err = test.Keygen(parameters, demo.safePrimes, pl, nil)
	}
	if err != nil {
		return errors.WithMessage(err, "key generation")
	}
	out := cmd.OutOrStdout()
	public, err := keys[0].PublicKey().MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "public key:  %s\n", hex.EncodeToString(public))

	if demo.derive != "" {
		if keys, err = derive(keys, public); err != nil {
			return err
		}
		child, _ := keys[0].PublicKey().MarshalBinary()
		fmt.Fprintf(out, "derived key: %s (m/%s)\n", hex.EncodeToString(child), demo.derive)
	}

	if demo.reveal {
		secret, err := reconstruct.FromLocalKeys(keys[:parameters.Threshold+1]...)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "private key: %s\n", hex.EncodeToString(secret.Bytes()))
	}

	log.Info().Interface("signers", signers).Msg("signing")
	signatures, err := test.Sign(keys, signers, m, nil)
	if err != nil {
		return errors.WithMessage(err, "signing")
	}
	sig := signatures[0]
	if !sig.Verify(keys[0].PublicKey(), m) {
		return ecdsa.ErrInvalidSignature
	}
	fmt.Fprintf(out, "digest:      %s\n", hex.EncodeToString(m))
	fmt.Fprintf(out, "signature:   %s\n", hex.EncodeToString(sig.ToCompact()))
	if demo.hash == "keccak256" {
		eth, err := sig.SigEthereum()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ethereum:    %s\n", hex.EncodeToString(eth))
		fmt.Fprintf(out, "address:     0x%s\n", hex.EncodeToString(ecdsa.EthereumAddress(keys[0].PublicKey())))
	}
	return nil
}

// derive applies the BIP32 path of the demo to the key of every party.
func derive(keys []*config.LocalKey, public []byte) ([]*config.LocalKey, error) {
	path, err := bip32.PathFrom(demo.derive)
	if err != nil {
		return nil, err
	}
	var chainCode []byte
	if demo.chainCode == "" {
		d := sha256.Sum256(public)
		chainCode = d[:]
	} else if chainCode, err = hex.DecodeString(demo.chainCode); err != nil {
		return nil, errors.Wrap(err, "chain code")
	}

	derived := make([]*config.LocalKey, len(keys))
	for i, key := range keys {
		state, err := tweak.Derive(key.ID, key, chainCode, path)
		if err != nil {
			return nil, err
		}
		derived[i] = state.LocalKey()
	}
	return derived, nil
}
