package sync

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
)

// SSZDecoder decodes SSZ encoded aggregate gossip payloads.
type SSZDecoder struct{}

// DecodeAggregateAndProof implements Decoder.
func (SSZDecoder) DecodeAggregateAndProof(data []byte) (*phase0.SignedAggregateAndProof, error) {
	agg := &phase0.SignedAggregateAndProof{}
	if err := agg.UnmarshalSSZ(data); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal aggregate and proof")
	}
	return agg, nil
}
