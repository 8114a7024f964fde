package sync

import (
	"fmt"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
)

// Action is what the caller should do with a validated message.
type Action int

const (
	// Accept the message and relay it.
	Accept Action = iota
	// Ignore the message without penalizing its source.
	Ignore
	// Reject the message; its source violated the protocol.
	Reject
	// SaveForFuture defers the message until a missing dependency is available.
	SaveForFuture
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Ignore:
		return "ignore"
	case Reject:
		return "reject"
	case SaveForFuture:
		return "save_for_future"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ValidationResult is the outcome of validating one gossip message.
type ValidationResult struct {
	Action Action
	Reason string
}

// Accepted is the outcome of a message that passed every check.
func Accepted() ValidationResult {
	return ValidationResult{Action: Accept}
}

// Ignored builds an IGNORE outcome.
func Ignored(reason string, args ...interface{}) ValidationResult {
	return ValidationResult{Action: Ignore, Reason: fmt.Sprintf(reason, args...)}
}

// Rejected builds a REJECT outcome.
func Rejected(reason string, args ...interface{}) ValidationResult {
	return ValidationResult{Action: Reject, Reason: fmt.Sprintf(reason, args...)}
}

// SavedForFuture is the outcome of a message whose dependencies are not available yet.
func SavedForFuture() ValidationResult {
	return ValidationResult{Action: SaveForFuture}
}

// IsNotProcessable reports whether validation must stop with this result.
func (r ValidationResult) IsNotProcessable() bool {
	return r.Action == Ignore || r.Action == Reject
}

func (r ValidationResult) String() string {
	if r.Reason == "" {
		return r.Action.String()
	}
	return fmt.Sprintf("%s: %s", r.Action, r.Reason)
}

// PubsubResult maps the outcome onto gossipsub. Deferred messages are not
// relayed now, so they map to ignore.
func (r ValidationResult) PubsubResult() pubsub.ValidationResult {
	switch r.Action {
	case Accept:
		return pubsub.ValidationAccept
	case Reject:
		return pubsub.ValidationReject
	default:
		return pubsub.ValidationIgnore
	}
}
