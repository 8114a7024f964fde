package publisher

import (
	"fmt"
	"sync"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/sirupsen/logrus"
)

// State is a step of a block's publication.
type State int

const (
	StateReceived State = iota
	StateUnblinding
	StateImporting
	StateBroadcastPending
	StatePublished
	StateSuppressed
	StateDone
)

var stateNames = []string{"received", "unblinding", "importing", "broadcast_pending", "published", "suppressed", "done"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// BroadcastStatus is what became of the block on the network once its
// publication is done.
type BroadcastStatus int

const (
	// NotBroadcast means the pipeline failed before publication was decided.
	NotBroadcast BroadcastStatus = iota
	// Broadcast means the block was handed to the broadcaster.
	Broadcast
	// Suppressed means broadcast validation failed and the block is never published.
	Suppressed
)

func (b BroadcastStatus) String() string {
	switch b {
	case NotBroadcast:
		return "not_broadcast"
	case Broadcast:
		return "broadcast"
	case Suppressed:
		return "suppressed"
	default:
		return fmt.Sprintf("broadcast_status(%d)", int(b))
	}
}

// Publication tracks one block through the publication pipeline.
type Publication struct {
	level    BroadcastValidationLevel
	received time.Time

	lock      sync.Mutex
	root      *phase0.Root
	state     State
	history   []State
	broadcast BroadcastStatus

	publishOnce sync.Once
	result      *async.Future[*SendSignedBlockResult]
	done        *async.Future[BroadcastStatus]
}

func newPublication(level BroadcastValidationLevel) *Publication {
	p := &Publication{
		level:    level,
		received: time.Now(),
		result:   async.NewFuture[*SendSignedBlockResult](),
		done:     async.NewFuture[BroadcastStatus](),
	}
	p.transition(StateReceived)
	return p
}

// Result resolves with the import outcome. It never fails.
func (p *Publication) Result() *async.Future[*SendSignedBlockResult] {
	return p.result
}

// Done resolves once the import result and, when requested, broadcast
// validation have both resolved.
func (p *Publication) Done() *async.Future[BroadcastStatus] {
	return p.done
}

// State is the latest state reached.
func (p *Publication) State() State {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.state
}

// History lists every state reached, in order.
func (p *Publication) History() []State {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]State(nil), p.history...)
}

func (p *Publication) setRoot(root phase0.Root) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.root = &root
}

func (p *Publication) transition(s State) {
	p.lock.Lock()
	p.state = s
	p.history = append(p.history, s)
	fields := p.fieldsLocked()
	p.lock.Unlock()

	publicationStateCounter.WithLabelValues(s.String()).Inc()
	log.WithFields(fields).WithField("state", s.String()).Trace("Block publication state changed")
}

func (p *Publication) setBroadcast(b BroadcastStatus) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.broadcast = b
}

func (p *Publication) fields() logrus.Fields {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.fieldsLocked()
}

func (p *Publication) fieldsLocked() logrus.Fields {
	f := logrus.Fields{"level": p.level.String()}
	if p.root != nil {
		f["blockRoot"] = fmt.Sprintf("%#x", *p.root)
	}
	return f
}

func (p *Publication) markDone() {
	p.transition(StateDone)
	p.lock.Lock()
	b := p.broadcast
	p.lock.Unlock()
	p.done.Complete(b)
}
