package sync

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/time/slots"
	"github.com/libp2p/go-libp2p-core/peer"
	"github.com/pkg/errors"
)

// ErrServiceStopped is reported by Status once the service was stopped.
var ErrServiceStopped = errors.New("sync service stopped")

// ServiceConfig holds the collaborators of the sync service.
type ServiceConfig struct {
	Validator *Config
	Clock     *slots.Clock
	Self      peer.ID
	Decoder   Decoder
	Scorer    PeerScorer
	// MaxPendingPerSlot bounds the deferred aggregates kept per slot.
	MaxPendingPerSlot int
	// OnRetried receives the verdict for every deferred aggregate that resolved.
	OnRetried func(*phase0.SignedAggregateAndProof, ValidationResult)
}

// Service owns the aggregate admission pipeline.
type Service struct {
	ctx       context.Context
	cancel    context.CancelFunc
	validator *AggregateValidator
	pending   *PendingAggregateQueue
	gossip    *GossipValidator
}

// NewService wires an aggregate validator with its pending queue and gossip adapter.
func NewService(ctx context.Context, cfg *ServiceConfig) (*Service, error) {
	if cfg == nil || cfg.Clock == nil {
		return nil, ErrMissingDependency
	}
	v, err := NewAggregateValidator(cfg.Validator)
	if err != nil {
		return nil, errors.Wrap(err, "could not create aggregate validator")
	}
	decoder := cfg.Decoder
	if decoder == nil {
		decoder = SSZDecoder{}
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = logScorer{}
	}
	ctx, cancel := context.WithCancel(ctx)
	pending := NewPendingAggregateQueue(v, cfg.Clock, cfg.MaxPendingPerSlot, cfg.OnRetried)
	return &Service{
		ctx:       ctx,
		cancel:    cancel,
		validator: v,
		pending:   pending,
		gossip:    NewGossipValidator(cfg.Self, v, decoder, scorer, pending),
	}, nil
}

// Validator returns the aggregate validator.
func (s *Service) Validator() *AggregateValidator {
	return s.validator
}

// Pending returns the queue of deferred aggregates.
func (s *Service) Pending() *PendingAggregateQueue {
	return s.pending
}

// Gossip returns the topic validator adapter.
func (s *Service) Gossip() *GossipValidator {
	return s.gossip
}

// Start retrying deferred aggregates every slot.
func (s *Service) Start() {
	s.pending.Start(s.ctx)
}

// Stop the retry routine.
func (s *Service) Stop() error {
	s.cancel()
	return nil
}

// Status of the sync service.
func (s *Service) Status() error {
	if s.ctx.Err() != nil {
		return ErrServiceStopped
	}
	return nil
}

type logScorer struct{}

func (logScorer) Penalize(pid peer.ID, reason string) {
	log.WithField("peer", pid.String()).WithField("reason", reason).Debug("Peer sent invalid aggregate")
}
