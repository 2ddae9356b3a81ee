package keygen

import (
	"github.com/nguyenkha/demo-mpc/pkg/math/curve"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/nguyenkha/demo-mpc/pkg/vss"
	"github.com/nguyenkha/demo-mpc/protocols/gg20/config"
)

var (
	_ protocol.State = (*Round1)(nil)
	_ protocol.State = (*Round2)(nil)
	_ protocol.State = (*Round3)(nil)
	_ protocol.State = (*Round4)(nil)
)

// Round1 is the state of a party after Stage1.
type Round1 struct {
	parameters config.Parameters
	pool       *pool.Pool
	out        *Stage1Output
}

// Start runs Stage1 for party id, and returns the first state of key generation.
func Start(id party.ID, parameters config.Parameters, safePrimes bool, pl *pool.Pool) (*Round1, error) {
	if err := parameters.Validate(); err != nil {
		return nil, protocol.NewError(protocol.KindShape, protocol.KeyGenStage1, err)
	}
	if err := id.Validate(parameters.ShareCount); err != nil {
		return nil, protocol.NewError(protocol.KindShape, protocol.KeyGenStage1, err)
	}
	out, err := Stage1(&Stage1Input{ID: id, SafePrimes: safePrimes, Pool: pl})
	if err != nil {
		return nil, err
	}
	return &Round1{parameters: parameters, pool: pl, out: out}, nil
}

func (*Round1) Stage() protocol.Stage { return protocol.KeyGenStage1 }

// Broadcast returns the message to send to every party.
func (r *Round1) Broadcast() *BroadcastMessage1 { return r.out.Broadcast }

// Decommit returns the opening to send to every party, once all broadcasts are received.
func (r *Round1) Decommit() *DecommitMessage1 { return r.out.Decommit }

// Next runs Stage2 on the messages of all parties, indexed by party.ID.Index.
func (r *Round1) Next(broadcasts []*BroadcastMessage1, decommits []*DecommitMessage1) (*Round2, error) {
	out, err := Stage2(&Stage2Input{
		Keys:       r.out.Keys,
		Broadcasts: broadcasts,
		Decommits:  decommits,
		Parameters: r.parameters,
		Pool:       r.pool,
	})
	if err != nil {
		return nil, err
	}
	ys := make([]*curve.Point, len(decommits))
	for i, d := range decommits {
		ys[i] = d.Y
	}
	return &Round2{
		parameters: r.parameters,
		keys:       r.out.Keys,
		broadcasts: broadcasts,
		ys:         ys,
		out:        out,
	}, nil
}

// Round2 is the state of a party after Stage2.
type Round2 struct {
	parameters config.Parameters
	keys       *Keys
	broadcasts []*BroadcastMessage1
	ys         []*curve.Point
	out        *Stage2Output
}

func (*Round2) Stage() protocol.Stage { return protocol.KeyGenStage2 }

// Scheme returns the VSS scheme to send to every party.
func (r *Round2) Scheme() *vss.Scheme { return r.out.Scheme }

// Share returns the share to send privately to j.
func (r *Round2) Share(j party.ID) *curve.Scalar { return r.out.Shares[j.Index()] }

// Next runs Stage3 on the schemes of all parties, and the shares they dealt to this party.
func (r *Round2) Next(schemes []*vss.Scheme, shares []*curve.Scalar) (*Round3, error) {
	out, err := Stage3(&Stage3Input{
		Keys:       r.keys,
		Ys:         r.ys,
		Schemes:    schemes,
		Shares:     shares,
		Parameters: r.parameters,
	})
	if err != nil {
		return nil, err
	}
	return &Round3{
		parameters: r.parameters,
		keys:       r.keys,
		broadcasts: r.broadcasts,
		ys:         r.ys,
		scheme:     r.out.Scheme,
		schemes:    schemes,
		out:        out,
	}, nil
}

// Round3 is the state of a party after Stage3.
type Round3 struct {
	parameters config.Parameters
	keys       *Keys
	broadcasts []*BroadcastMessage1
	ys         []*curve.Point
	scheme     *vss.Scheme
	schemes    []*vss.Scheme
	out        *Stage3Output
}

func (*Round3) Stage() protocol.Stage { return protocol.KeyGenStage3 }

// DLogProof returns the proof to send to every party.
func (r *Round3) DLogProof() *DLogProof { return r.out.DLogProof }

// Next runs Stage4 on the proofs of all parties and assembles the LocalKey.
func (r *Round3) Next(proofs []*DLogProof) (*Round4, error) {
	if _, err := Stage4(&Stage4Input{
		Ys:         r.ys,
		Schemes:    r.schemes,
		Proofs:     proofs,
		Parameters: r.parameters,
	}); err != nil {
		return nil, err
	}
	key, err := Assemble(&AssembleInput{
		Keys:       r.keys,
		Parameters: r.parameters,
		Broadcasts: r.broadcasts,
		Scheme:     r.scheme,
		SharedKeys: r.out.SharedKeys,
		Proofs:     proofs,
	})
	if err != nil {
		return nil, err
	}
	return &Round4{key: key}, nil
}

// Round4 is the final state of key generation.
type Round4 struct {
	key *config.LocalKey
}

func (*Round4) Stage() protocol.Stage { return protocol.KeyGenStage4 }

// LocalKey returns the durable key of this party.
func (r *Round4) LocalKey() *config.LocalKey { return r.key }
