// Package verification batches BLS signature checks from concurrent gossip
// validations into as few pairing operations as possible.
package verification

import (
	"context"
	"sync"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/crypto/bls"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "verification")

const signatureVerificationInterval = 50 * time.Millisecond

const verifierLimit = 50

// ErrServiceStopped is returned for sets submitted after the service stopped.
var ErrServiceStopped = errors.New("signature verification service stopped")

// SignatureVerifier checks BLS signatures. Verify is synchronous and pure;
// VerifyBatch resolves one combined result for every check in the set.
type SignatureVerifier interface {
	Verify(pubkey phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature) bool
	VerifyBatch(ctx context.Context, set *bls.SignatureSet) *async.Future[bool]
}

type signatureVerifier struct {
	set *bls.SignatureSet
	res *async.Future[bool]
}

// Service coalesces signature sets submitted by concurrent callers and
// verifies them together on a single routine.
type Service struct {
	ctx           context.Context
	cancel        context.CancelFunc
	signatureChan chan *signatureVerifier
	interval      time.Duration
	limit         int

	lock    sync.RWMutex
	stopped bool
}

// Option configures the verification service.
type Option func(*Service)

// WithInterval sets how long sets wait for company before being verified.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		s.interval = d
	}
}

// WithLimit sets the number of queued sets that triggers an immediate verification.
func WithLimit(n int) Option {
	return func(s *Service) {
		s.limit = n
	}
}

// NewService creates a verification service. Call Start to begin processing.
func NewService(ctx context.Context, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		ctx:      ctx,
		cancel:   cancel,
		interval: signatureVerificationInterval,
		limit:    verifierLimit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.limit <= 0 {
		s.limit = 1
	}
	s.signatureChan = make(chan *signatureVerifier, s.limit)
	return s
}

// Start the verifier routine.
func (s *Service) Start() {
	go s.verifierRoutine()
}

// Stop the verifier routine. Every set still queued, including sets queued
// before Start, resolves with ErrServiceStopped.
func (s *Service) Stop() error {
	s.cancel()
	// Wait out in-flight submissions; none can enqueue after this.
	s.lock.Lock()
	s.stopped = true
	s.lock.Unlock()
	s.drain()
	return nil
}

// drain fails every set left in the channel without blocking.
func (s *Service) drain() {
	for {
		select {
		case sig := <-s.signatureChan:
			sig.res.Fail(ErrServiceStopped)
		default:
			return
		}
	}
}

// Status reports an error once the service has been stopped.
func (s *Service) Status() error {
	if s.ctx.Err() != nil {
		return ErrServiceStopped
	}
	return nil
}

// Verify checks a single signature immediately on the calling goroutine.
func (s *Service) Verify(pubkey phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature) bool {
	return bls.VerifySignature(pubkey, msg, sig)
}

// VerifyBatch queues the set for verification. The returned future resolves
// true only if every signature in the set is valid.
func (s *Service) VerifyBatch(ctx context.Context, set *bls.SignatureSet) *async.Future[bool] {
	if set == nil || set.Len() == 0 {
		return async.Completed(true)
	}
	res := async.NewFuture[bool]()
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.stopped || s.ctx.Err() != nil {
		res.Fail(ErrServiceStopped)
		return res
	}
	select {
	case s.signatureChan <- &signatureVerifier{set: set, res: res}:
	case <-ctx.Done():
		res.Fail(ctx.Err())
	case <-s.ctx.Done():
		res.Fail(ErrServiceStopped)
	}
	return res
}

func (s *Service) verifierRoutine() {
	verifierBatch := make([]*signatureVerifier, 0)
	ticker := time.NewTicker(s.interval)
	for {
		select {
		case <-s.ctx.Done():
			// Clean up currently utilised resources.
			ticker.Stop()
			for i := 0; i < len(verifierBatch); i++ {
				verifierBatch[i].res.Fail(ErrServiceStopped)
			}
			s.drain()
			return
		case sig := <-s.signatureChan:
			verifierBatch = append(verifierBatch, sig)
			if len(verifierBatch) >= s.limit {
				verifierBatch = verifyBatch(verifierBatch)
			}
		case <-ticker.C:
			if len(verifierBatch) > 0 {
				verifierBatch = verifyBatch(verifierBatch)
			}
		}
	}
}

func verifyBatch(verifierBatch []*signatureVerifier) []*signatureVerifier {
	batchSize.Observe(float64(len(verifierBatch)))
	aggSet := bls.NewSet()
	for i := 0; i < len(verifierBatch); i++ {
		aggSet.Join(verifierBatch[i].set)
	}
	verified, err := aggSet.Verify()
	if err == nil && verified {
		for i := 0; i < len(verifierBatch); i++ {
			verifierBatch[i].res.Complete(true)
		}
		return []*signatureVerifier{}
	}
	if len(verifierBatch) > 1 {
		batchFallbackCount.Inc()
	}
	// A joined failure says nothing about which caller is at fault.
	for i := 0; i < len(verifierBatch); i++ {
		v := verifierBatch[i]
		ok, err := v.set.Verify()
		if err != nil {
			log.WithError(err).WithField("descriptions", v.set.Descriptions).Debug("Could not verify signature set")
		}
		v.res.Complete(err == nil && ok)
	}
	return []*signatureVerifier{}
}
