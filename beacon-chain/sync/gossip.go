package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/libp2p/go-libp2p-core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Decoder turns gossip payloads into aggregates.
type Decoder interface {
	DecodeAggregateAndProof(data []byte) (*phase0.SignedAggregateAndProof, error)
}

// PeerScorer applies the consequences of a protocol violation to a peer.
type PeerScorer interface {
	Penalize(pid peer.ID, reason string)
}

const pubsubMessageTimeout = 30 * time.Second

// TopicRegistrar registers topic validators; *pubsub.PubSub implements it.
type TopicRegistrar interface {
	RegisterTopicValidator(topic string, val interface{}, opts ...pubsub.ValidatorOpt) error
}

// GossipValidator adapts the AggregateValidator to a gossipsub topic validator.
type GossipValidator struct {
	self      peer.ID
	validator *AggregateValidator
	decoder   Decoder
	scorer    PeerScorer
	pending   *PendingAggregateQueue
}

// NewGossipValidator wires an aggregate topic validator. pending may be nil,
// in which case deferred aggregates are dropped.
func NewGossipValidator(self peer.ID, v *AggregateValidator, d Decoder, s PeerScorer, pending *PendingAggregateQueue) *GossipValidator {
	return &GossipValidator{self: self, validator: v, decoder: d, scorer: s, pending: pending}
}

// ValidateAggregateAndProof is a pubsub.ValidatorEx for the aggregate and proof topic.
// Only REJECT outcomes penalize the sending peer.
func (g *GossipValidator) ValidateAggregateAndProof(ctx context.Context, pid peer.ID, msg *pubsub.Message) pubsub.ValidationResult {
	// Locally produced aggregates were validated before publishing.
	if pid == g.self {
		return pubsub.ValidationAccept
	}
	ctx, span := trace.StartSpan(ctx, "sync.gossipAggregateAndProof")
	defer span.End()

	if msg == nil || msg.Message == nil {
		return pubsub.ValidationReject
	}
	topic := msg.GetTopic()
	if topic == "" {
		log.WithError(errInvalidTopic).Debug("Rejecting gossip message")
		return pubsub.ValidationReject
	}

	agg, err := g.decoder.DecodeAggregateAndProof(msg.GetData())
	if err != nil {
		messageFailedValidationCounter.WithLabelValues(topic).Inc()
		g.scorer.Penalize(pid, errors.Wrap(err, "could not decode aggregate").Error())
		return pubsub.ValidationReject
	}

	res, err := g.validator.Validate(ctx, agg).Await(ctx)
	if err != nil {
		// Internal failures never penalize the peer.
		messageIgnoredValidationCounter.WithLabelValues(topic).Inc()
		log.WithError(err).WithField("peer", pid.String()).Debug("Ignoring aggregate after internal error")
		return pubsub.ValidationIgnore
	}

	switch res.Action {
	case Accept:
		msg.ValidatorData = agg
	case Reject:
		messageFailedValidationCounter.WithLabelValues(topic).Inc()
		g.scorer.Penalize(pid, res.Reason)
	case SaveForFuture:
		if g.pending != nil {
			g.pending.Save(agg)
		}
		messageIgnoredValidationCounter.WithLabelValues(topic).Inc()
	default:
		messageIgnoredValidationCounter.WithLabelValues(topic).Inc()
	}
	return res.PubsubResult()
}

// Register installs the validator for topic on ps.
func (g *GossipValidator) Register(ps TopicRegistrar, topic string) error {
	if topic == "" {
		return errInvalidTopic
	}
	if err := ps.RegisterTopicValidator(g.wrapAndReportValidation(topic, g.ValidateAggregateAndProof)); err != nil {
		return errors.Wrapf(err, "could not register validator for topic %s", topic)
	}
	return nil
}

// Wrap the pubsub validator with a metric monitoring function and a deadline.
// A validator that panics ignores the message.
func (g *GossipValidator) wrapAndReportValidation(topic string, v pubsub.ValidatorEx) (string, pubsub.ValidatorEx) {
	return topic, func(ctx context.Context, pid peer.ID, msg *pubsub.Message) (res pubsub.ValidationResult) {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("topic", topic).WithError(fmt.Errorf("panic occurred: %v", r)).Error("Panic in message validation")
				res = pubsub.ValidationIgnore
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, pubsubMessageTimeout)
		defer cancel()
		messageReceivedCounter.WithLabelValues(topic).Inc()
		return v(ctx, pid, msg)
	}
}
