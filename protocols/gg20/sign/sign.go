// Package sign implements the nine stages of GG20 threshold signing.
//
// Stages 1 to 7 produce a CompletedOfflineStage, independent of the message.
// Stage8 consumes it to produce a partial signature, and Stage9 combines the partial
// signatures of all signers into an ECDSA signature.
//
// Vectors are indexed either by position in the signer set ("[S]"), or by peer
// position as given by party.Peers ("[peers]").
package sign

import (
	"crypto/rand"

	"github.com/nguyenkha/demo-mpc/pkg/hash"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkenc "github.com/nguyenkha/demo-mpc/pkg/zk/enc"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const protocolID = "gg20/sign"

func logger(stage protocol.Stage, id party.ID) zerolog.Logger {
	return log.With().
		Str("component", protocolID).
		Str("stage", stage.String()).
		Uint16("party", uint16(id)).
		Logger()
}

// transcript returns the hash shared by all signers of the session.
func transcript(signers party.IDSlice) *hash.Hash {
	return hash.New(&hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(protocolID)}, signers)
}

// proverHash returns the hash used by id for its commitments and proofs.
func proverHash(signers party.IDSlice, id party.ID) *hash.Hash {
	return transcript(signers).Fork(id)
}

// mtaHash returns the hash of the MtA between the responder from and the owner of K, to.
func mtaHash(signers party.IDSlice, from, to party.ID, label string) *hash.Hash {
	return transcript(signers).Fork(from, to, &hash.BytesWithDomain{TheDomain: "MtA", Bytes: []byte(label)})
}

const (
	labelGamma = "gamma"
	labelW     = "w"
)

// session checks the key and the signer set, and returns the view of the caller.
func session(stage protocol.Stage, key *config.LocalKey, signers party.IDSlice) (party.Peers, error) {
	if key == nil {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrMissingMessage, "local key"))
	}
	if err := key.Validate(); err != nil {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, errors.WithStack(err))
	}
	if err := key.Parameters.ValidateSigners(signers, key.ID); err != nil {
		return party.Peers{}, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInvalidSigners, err.Error()))
	}
	peers, err := signers.Peers(key.ID)
	if err != nil {
		return party.Peers{}, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInvalidSigners, err.Error()))
	}
	return peers, nil
}

// checkSignKeys ensures keys belong to the caller and can still be used.
func checkSignKeys(stage protocol.Stage, keys *SignKeys, id party.ID) error {
	if !keys.valid() {
		return protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrMissingMessage, "sign keys"))
	}
	if keys.ID != id {
		return protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrWrongSender, "sign keys"))
	}
	if keys.Consumed() {
		return protocol.NewError(protocol.KindShape, stage, errors.WithStack(ErrSignKeysConsumed))
	}
	return nil
}

// checkLength returns a shape error if length is not n.
func checkLength(stage protocol.Stage, name string, length, n int) error {
	if length != n {
		return protocol.NewError(protocol.KindShape, stage,
			errors.Wrapf(ErrVectorLength, "%s: got %d, expected %d", name, length, n))
	}
	return nil
}

type Stage1Input struct {
	Key     *config.LocalKey
	Signers party.IDSlice
}

type Stage1Output struct {
	SignKeys  *SignKeys
	Broadcast *BroadcastMessage
	Decommit  *DecommitMessage
	MessageA  *MessageA
}

// Stage1 computes the additive share wᵢ of the key, samples kᵢ and γᵢ,
// commits to Γᵢ = γᵢ⋅G and encrypts kᵢ with a range proof for every peer.
func Stage1(in *Stage1Input) (*Stage1Output, error) {
	const stage = protocol.SignStage1
	if in == nil {
		return nil, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	peers, err := session(stage, in.Key, in.Signers)
	if err != nil {
		return nil, err
	}
	self := in.Key.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	w := in.Key.SignShare(in.Signers)
	k := sample.Scalar(rand.Reader)
	gamma, Gamma := sample.ScalarPointPair(rand.Reader)

	commitment, decommitment, err := proverHash(in.Signers, self).Commit(Gamma)
	if err != nil {
		return nil, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrStage1Commit, err.Error()))
	}

	paillierKey := in.Key.PaillierKey(self)
	K, rho := paillierKey.Enc(rand.Reader, k.Int())

	h := proverHash(in.Signers, self)
	proofs := make([]*zkenc.Proof, peers.Len())
	for j := range proofs {
		proofs[j] = zkenc.NewProof(h.Clone(), zkenc.Public{
			K:      K,
			Prover: paillierKey,
			Aux:    in.Key.PedersenParameters(peers.At(j)),
		}, zkenc.Private{
			K:   k.Int(),
			Rho: rho,
		})
	}

	l.Debug().Msg("done")
	return &Stage1Output{
		SignKeys: &SignKeys{
			ID:          self,
			K:           k,
			Gamma:       gamma,
			W:           w,
			GW:          w.ActOnBase(),
			GGamma:      Gamma,
			KCiphertext: K,
			KNonce:      rho,
		},
		Broadcast: &BroadcastMessage{ID: self, Commitment: commitment},
		Decommit:  &DecommitMessage{ID: self, GGamma: Gamma, Decommitment: decommitment},
		MessageA:  &MessageA{ID: self, K: K, Proofs: proofs},
	}, nil
}

func sumPoints(points []*curve.Point) *curve.Point {
	sum := curve.NewIdentityPoint()
	for _, p := range points {
		sum.Add(sum, p)
	}
	return sum
}
