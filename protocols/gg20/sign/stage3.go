package sign

import (
	"crypto/rand"

	"github.com/nguyenkha/demo-mpc/internal/elgamal"
	"github.com/nguyenkha/demo-mpc/internal/mta"
	"github.com/nguyenkha/demo-mpc/internal/parallel"
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	zkped "github.com/nguyenkha/demo-mpc/pkg/zk/ped"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
	"github.com/pkg/errors"
)

type Stage3Input struct {
	Key      *config.LocalKey
	Signers  party.IDSlice
	SignKeys *SignKeys
	// Betas and Nus are the outputs of this party's Stage2.
	Betas []*curve.Scalar
	Nus   []*curve.Scalar
	// MessageBGammas[j] and MessageBWs[j] were sent by the j-th peer to this party.
	MessageBGammas []*mta.MessageB
	MessageBWs     []*mta.MessageB
}

type Stage3Output struct {
	// DeltaI = δᵢ, the additive share of k⋅γ
	DeltaI *curve.Scalar
	// TI = Tᵢ = σᵢ⋅G + lᵢ⋅H
	TI *curve.Point
	// LI = lᵢ, kept secret
	LI *curve.Scalar
	// SigmaI = σᵢ, kept secret
	SigmaI *curve.Scalar
	TProof *TProof
}

// Validate checks the shape of the input, and returns the view of the caller.
func (in *Stage3Input) Validate() (party.Peers, error) {
	const stage = protocol.SignStage3
	if in == nil {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	peers, err := session(stage, in.Key, in.Signers)
	if err != nil {
		return peers, err
	}
	if err = checkSignKeys(stage, in.SignKeys, in.Key.ID); err != nil {
		return peers, err
	}
	n := peers.Len()
	for _, v := range []struct {
		name   string
		length int
	}{
		{"betas", len(in.Betas)},
		{"nus", len(in.Nus)},
		{"message b gammas", len(in.MessageBGammas)},
		{"message b ws", len(in.MessageBWs)},
	} {
		if err = checkLength(stage, v.name, v.length, n); err != nil {
			return peers, err
		}
	}
	for j := 0; j < n; j++ {
		if in.Betas[j] == nil || in.Nus[j] == nil {
			return peers, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrMissingMessage, "own MtA shares"))
		}
		if in.MessageBGammas[j].Validate() != nil || in.MessageBWs[j].Validate() != nil {
			return peers, protocol.Blame(protocol.KindMalformed, stage, peers.At(j), errors.WithStack(mta.ErrMessageBMalformed))
		}
	}
	return peers, nil
}

// Stage3 completes both MtA instances with every peer, and derives the additive shares
// δᵢ of k⋅γ and σᵢ of k⋅w. It also commits to σᵢ in Tᵢ.
func Stage3(in *Stage3Input) (*Stage3Output, error) {
	const stage = protocol.SignStage3
	peers, err := in.Validate()
	if err != nil {
		return nil, err
	}
	self := in.Key.ID
	l := logger(stage, self)
	l.Debug().Msg("start")

	n := peers.Len()
	alphas := make([]*curve.Scalar, n)
	mus := make([]*curve.Scalar, n)
	ownSecret := in.Key.PaillierSecret
	ownPedersen := in.Key.PedersenParameters(self)
	K := in.SignKeys.KCiphertext

	err = parallel.ForEach(n, func(j int) error {
		id := peers.At(j)
		peerPaillier := in.Key.PaillierKey(id)

		alpha, err := mta.AlphaFrom(mtaHash(in.Signers, id, self, labelGamma), in.MessageBGammas[j], K, ownSecret, peerPaillier, ownPedersen)
		if err != nil {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithMessage(ErrStage3MtA, err.Error()))
		}
		mu, err := mta.AlphaFrom(mtaHash(in.Signers, id, self, labelW), in.MessageBWs[j], K, ownSecret, peerPaillier, ownPedersen)
		if err != nil {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithMessage(ErrStage3MtA, err.Error()))
		}
		if !in.MessageBWs[j].X.Equal(in.Key.PublicSignShare(in.Signers, id)) {
			return protocol.Blame(protocol.KindVerification, stage, id, errors.WithStack(ErrStage3WShareMismatch))
		}
		alphas[j], mus[j] = alpha, mu
		return nil
	})
	if err != nil {
		l.Warn().Err(err).Msg("verification failed")
		return nil, err
	}

	// δᵢ = kᵢγᵢ + ∑ⱼ αᵢⱼ + βᵢⱼ
	delta := curve.NewScalar().Multiply(in.SignKeys.K, in.SignKeys.Gamma)
	// σᵢ = kᵢwᵢ + ∑ⱼ μᵢⱼ + νᵢⱼ
	sigma := curve.NewScalar().Multiply(in.SignKeys.K, in.SignKeys.W)
	for j := 0; j < n; j++ {
		delta.Add(delta, alphas[j]).Add(delta, in.Betas[j])
		sigma.Add(sigma, mus[j]).Add(sigma, in.Nus[j])
	}

	li := sample.Scalar(rand.Reader)
	T := elgamal.EncryptWithNonce(curve.H(), sigma, li).M
	proof := zkped.NewProof(proverHash(in.Signers, self), zkped.Public{T: T}, zkped.Private{Sigma: sigma, L: li})

	l.Debug().Msg("done")
	return &Stage3Output{
		DeltaI: delta,
		TI:     T,
		LI:     li,
		SigmaI: sigma,
		TProof: &TProof{T: T, Proof: proof},
	}, nil
}
