package sync

import "github.com/pkg/errors"

var (
	errInvalidTopic = errors.New("invalid topic format")
	// ErrMissingDependency is returned by NewAggregateValidator for an unset collaborator.
	ErrMissingDependency = errors.New("missing required dependency")
)
