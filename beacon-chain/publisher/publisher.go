package publisher

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/consensus-types/blocks"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

var (
	// ErrMissingDependency is returned by New for an unset collaborator.
	ErrMissingDependency = errors.New("missing required dependency")
	errNilImportResult   = errors.New("import channel returned no import result")
)

// Config holds the collaborators of a Publisher.
type Config struct {
	Unblinder   Unblinder
	Importer    ImportChannel
	Broadcaster Broadcaster
	// Scheduler runs continuations; defaults to a goroutine per continuation.
	Scheduler async.Scheduler
}

// Publisher imports locally produced blocks and releases them onto the
// network according to their broadcast validation level.
type Publisher struct {
	unblinder   Unblinder
	importer    ImportChannel
	broadcaster Broadcaster
	scheduler   async.Scheduler
}

// New creates a publisher from cfg.
func New(cfg *Config) (*Publisher, error) {
	if cfg == nil || cfg.Unblinder == nil || cfg.Importer == nil || cfg.Broadcaster == nil {
		return nil, ErrMissingDependency
	}
	s := cfg.Scheduler
	if s == nil {
		s = async.GoScheduler
	}
	return &Publisher{
		unblinder:   cfg.Unblinder,
		importer:    cfg.Importer,
		broadcaster: cfg.Broadcaster,
		scheduler:   s,
	}, nil
}

// SendSignedBlock submits blk and resolves with the outcome of its import.
func (p *Publisher) SendSignedBlock(ctx context.Context, blk *blocks.SignedBlock, level BroadcastValidationLevel) *async.Future[*SendSignedBlockResult] {
	return p.Submit(ctx, blk, level).Result()
}

// Submit starts the publication of blk. The pipeline runs to completion even
// if ctx is cancelled: import and broadcast are side effects of record.
//
// With NotRequired the block is published as soon as it is unblinded,
// concurrently with import, and the result reflects only the import. Higher
// levels publish iff broadcast validation succeeds; a failed validation
// suppresses publication for good while the result still reports the import.
func (p *Publisher) Submit(ctx context.Context, blk *blocks.SignedBlock, level BroadcastValidationLevel) *Publication {
	ctx = context.WithoutCancel(ctx)
	ctx, span := trace.StartSpan(ctx, "publisher.sendSignedBlock")
	span.AddAttributes(trace.StringAttribute("level", level.String()))

	pub := newPublication(level)
	pub.result.OnComplete(async.Immediate, func(res *SendSignedBlockResult, _ error) {
		defer span.End()
		outcome := res.Classify()
		publicationOutcomeCounter.WithLabelValues(level.String(), outcome.String()).Inc()
		span.AddAttributes(trace.StringAttribute("outcome", outcome.String()))
		l := log.WithFields(pub.fields()).WithField("outcome", outcome.String())
		if res.RejectionReason != "" {
			l = l.WithField("reason", res.RejectionReason)
		}
		l.Debug("Block submission resolved")
	})

	if blk == nil {
		p.fail(pub, SendRejected(InternalError), blocks.ErrNilBeaconBlock)
		return pub
	}
	root, err := blk.Root()
	if err != nil {
		p.fail(pub, SendRejected(InternalError), errors.Wrap(err, "could not hash block"))
		return pub
	}
	pub.setRoot(root)
	internal := SendNotImported(root, InternalError)

	unblinded := async.Completed(blk)
	if blk.IsBlinded() {
		pub.transition(StateUnblinding)
		unblinded = async.OrFailed(p.unblinder.Unblind(ctx, blk))
	}
	unblinded.OnComplete(p.scheduler, func(full *blocks.SignedBlock, err error) {
		if err == nil && full == nil {
			err = blocks.ErrNilBeaconBlock
		}
		if err != nil {
			p.fail(pub, internal, errors.Wrap(err, "could not unblind block"))
			return
		}
		pub.transition(StateImporting)
		if !level.RequiresValidation() {
			p.publish(ctx, pub, full)
		}
		async.OrFailed(p.importer.ImportBlock(ctx, full, level)).OnComplete(p.scheduler, func(res *ImportAndBroadcastValidationResults, err error) {
			if err == nil && (res == nil || res.ImportResult == nil) {
				err = errNilImportResult
			}
			if err != nil {
				p.fail(pub, internal, errors.Wrap(err, "could not import block"))
				return
			}
			p.awaitOutcome(ctx, pub, root, full, res)
		})
	})
	return pub
}

// awaitOutcome gates publication on broadcast validation and reports the
// import result. The publication is done once both have resolved.
func (p *Publisher) awaitOutcome(ctx context.Context, pub *Publication, root phase0.Root, blk *blocks.SignedBlock, res *ImportAndBroadcastValidationResults) {
	var remaining atomic.Int32
	remaining.Store(1)
	resolved := func() {
		if remaining.Add(-1) == 0 {
			pub.markDone()
		}
	}

	if pub.level.RequiresValidation() {
		if res.BroadcastValidation == nil {
			p.suppress(pub, "import channel returned no broadcast validation")
		} else {
			remaining.Add(1)
			pub.transition(StateBroadcastPending)
			res.BroadcastValidation.OnComplete(p.scheduler, func(r BroadcastValidationResult, err error) {
				defer resolved()
				switch {
				case err != nil:
					p.suppress(pub, errors.Wrap(err, "broadcast validation failed").Error())
				case r != BroadcastValidationSuccess:
					p.suppress(pub, r.String())
				default:
					p.publish(ctx, pub, blk)
				}
			})
		}
	}

	res.ImportResult.OnComplete(p.scheduler, func(ir ImportResult, err error) {
		defer resolved()
		switch {
		case err != nil:
			log.WithFields(pub.fields()).WithError(err).Error("Block import failed")
			pub.result.Complete(SendNotImported(root, InternalError))
		case !ir.IsSuccessful():
			l := log.WithFields(pub.fields()).WithField("reason", string(ir.FailureReason))
			if ir.Err != nil {
				l = l.WithError(ir.Err)
			}
			l.Warn("Block was not imported")
			pub.result.Complete(SendNotImported(root, ir.FailureReason))
		default:
			pub.result.Complete(SendSucceeded(root))
		}
	})
}

// publish hands blk to the broadcaster, at most once per publication. A failed
// broadcast is logged and never changes the result.
func (p *Publisher) publish(ctx context.Context, pub *Publication, blk *blocks.SignedBlock) {
	pub.publishOnce.Do(func() {
		pub.setBroadcast(Broadcast)
		pub.transition(StatePublished)
		publishDelay.Observe(float64(time.Since(pub.received).Milliseconds()))
		async.OrFailed(p.broadcaster.Publish(ctx, blk)).OnComplete(async.Immediate, func(_ struct{}, err error) {
			if err != nil {
				publishFailedCounter.Inc()
				log.WithFields(pub.fields()).WithError(err).Warn("Could not publish block")
			}
		})
	})
}

func (p *Publisher) suppress(pub *Publication, reason string) {
	pub.setBroadcast(Suppressed)
	pub.transition(StateSuppressed)
	log.WithFields(pub.fields()).WithField("reason", reason).Info("Block publication suppressed")
}

func (p *Publisher) fail(pub *Publication, res *SendSignedBlockResult, err error) {
	log.WithFields(pub.fields()).WithError(err).Error("Could not send signed block")
	pub.result.Complete(res)
	pub.markDone()
}
