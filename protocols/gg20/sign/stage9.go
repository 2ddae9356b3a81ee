package sign

import (
	"github.com/nguyenkha/demo-mpc/pkg/ecdsa"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/pkg/errors"
)

type Stage9Input struct {
	LocalSignature *LocalSignature
	// PartialSignatures[j] was sent by the j-th peer.
	PartialSignatures []*PartialSignature
}

type Stage9Output struct {
	Signature *ecdsa.Signature
}

// Validate checks the shape of the input, and returns the view of the caller.
func (in *Stage9Input) Validate() (party.Peers, error) {
	const stage = protocol.SignStage9
	if in == nil || in.LocalSignature == nil {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, ErrMissingMessage)
	}
	s := in.LocalSignature
	if s.R == nil || s.SI == nil || s.Y == nil || len(s.Digest) == 0 {
		return party.Peers{}, protocol.NewError(protocol.KindMalformed, stage, errors.WithMessage(ErrMissingMessage, "local signature"))
	}
	peers, err := s.peers()
	if err != nil {
		return peers, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInvalidSigners, err.Error()))
	}
	n := len(s.Signers)
	if len(s.RDashes) != n || len(s.Ss) != n {
		return peers, protocol.NewError(protocol.KindShape, stage, errors.WithMessage(ErrInconsistentOfflineStage, "local signature"))
	}
	if err = checkLength(stage, "partial signatures", len(in.PartialSignatures), peers.Len()); err != nil {
		return peers, err
	}
	for j, partial := range in.PartialSignatures {
		id := peers.At(j)
		if partial == nil || partial.S == nil {
			return peers, protocol.Blame(protocol.KindMalformed, stage, id, ErrMissingMessage)
		}
		if partial.ID != id {
			return peers, protocol.Blame(protocol.KindShape, stage, id, ErrWrongSender)
		}
	}
	return peers, nil
}

// Stage9 sums the partial signatures into a normalized signature, and verifies it against Y.
// If it is invalid, every partial signature sⱼ is checked against R'ⱼ and Sⱼ to find the culprit.
func Stage9(in *Stage9Input) (*Stage9Output, error) {
	const stage = protocol.SignStage9
	peers, err := in.Validate()
	if err != nil {
		return nil, err
	}
	s := in.LocalSignature
	l := logger(stage, s.ID)

	shares := make([]*ecdsa.SignatureShare, 0, len(s.Signers))
	shares = append(shares, s.SI)
	for _, partial := range in.PartialSignatures {
		shares = append(shares, partial.S)
	}
	sig := ecdsa.Combine(s.R, shares...)
	if sig.Verify(s.Y, s.Digest) {
		l.Debug().Msg("done")
		return &Stage9Output{Signature: sig}, nil
	}

	for j, partial := range in.PartialSignatures {
		i := peers.SetPosition(j)
		if !ecdsa.VerifySignatureShare(s.Digest, s.R, s.RDashes[i], s.Ss[i], partial.S) {
			err = protocol.Blame(protocol.KindVerification, stage, partial.ID, errors.WithStack(ErrStage9PartialSignature))
			l.Warn().Err(err).Msg("verification failed")
			return nil, err
		}
	}
	err = protocol.NewError(protocol.KindVerification, stage, errors.WithStack(ErrStage9InvalidSignature))
	l.Warn().Err(err).Msg("verification failed")
	return nil, err
}
