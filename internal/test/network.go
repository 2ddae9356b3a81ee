// Package test runs complete sessions in a single process, routing the outputs of
// every party to the inputs of the others. It is used by tests and by the demo command.
package test

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/party"
	"github.com/nguyenkha/demo-mpc/pkg/protocol"
	"github.com/rs/zerolog/log"
)

// Rule describes a hook applied to every message delivered during a session.
type Rule interface {
	// ModifyContent may modify content, a decoded copy of the message sent by from to to after stage.
	// Content is always a pointer or a slice, so that it can be modified in place.
	ModifyContent(stage protocol.Stage, from, to party.ID, content interface{})
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(stage protocol.Stage, from, to party.ID, content interface{})

func (f RuleFunc) ModifyContent(stage protocol.Stage, from, to party.ID, content interface{}) {
	f(stage, from, to, content)
}

// transmit encodes msg and decodes it for the recipient, applying rule to the copy.
func transmit[T any](rule Rule, stage protocol.Stage, from, to party.ID, msg T) (T, error) {
	var out T
	data, err := cbor.Marshal(msg)
	if err != nil {
		return out, err
	}
	if err = cbor.Unmarshal(data, &out); err != nil {
		return out, err
	}
	log.Trace().
		Str("stage", stage.String()).
		Uint16("from", uint16(from)).
		Uint16("to", uint16(to)).
		Int("size", len(data)).
		Msg("deliver")
	if rule != nil {
		rule.ModifyContent(stage, from, to, out)
	}
	return out, nil
}

// gather collects the messages sent to to by all parties, indexed like parties.
func gather[T any](rule Rule, stage protocol.Stage, parties party.IDSlice, to party.ID, send func(i int) T) ([]T, error) {
	out := make([]T, len(parties))
	for i, from := range parties {
		msg, err := transmit(rule, stage, from, to, send(i))
		if err != nil {
			return nil, err
		}
		out[i] = msg
	}
	return out, nil
}

// gatherPeers collects the messages sent to the owner of peers, indexed by peer position.
func gatherPeers[T any](rule Rule, stage protocol.Stage, peers party.Peers, send func(from party.ID) T) ([]T, error) {
	out := make([]T, peers.Len())
	for j := range out {
		from := peers.At(j)
		msg, err := transmit(rule, stage, from, peers.Self(), send(from))
		if err != nil {
			return nil, err
		}
		out[j] = msg
	}
	return out, nil
}
