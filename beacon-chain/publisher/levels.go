// Package publisher releases locally produced blocks onto the network,
// ordering broadcast against local import according to the requested
// broadcast validation level.
package publisher

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// BroadcastValidationLevel is the assurance a block must reach before it is
// relayed. Levels are ordered; every level above NotRequired withholds the
// block until the import channel confirms it.
type BroadcastValidationLevel int

const (
	// NotRequired publishes immediately, concurrently with import.
	NotRequired BroadcastValidationLevel = iota
	// Gossip publishes once the block passes gossip validation.
	Gossip
	// Consensus publishes once the block passes full consensus validation.
	Consensus
	// ConsensusAndEquivocation additionally requires that the proposer did not equivocate.
	ConsensusAndEquivocation
)

// ErrUnknownLevel is returned when parsing an unrecognized level name.
var ErrUnknownLevel = errors.New("unknown broadcast validation level")

var levelNames = []string{"not_required", "gossip", "consensus", "consensus_and_equivocation"}

func (l BroadcastValidationLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// RequiresValidation reports whether publication waits for broadcast validation.
func (l BroadcastValidationLevel) RequiresValidation() bool {
	return l > NotRequired
}

// ParseBroadcastValidationLevel parses the lower or upper case level name.
func ParseBroadcastValidationLevel(s string) (BroadcastValidationLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return BroadcastValidationLevel(i), nil
		}
	}
	return NotRequired, errors.Wrapf(ErrUnknownLevel, "%q", s)
}

// LevelNames lists the accepted level names in ascending order.
func LevelNames() []string {
	return append([]string(nil), levelNames...)
}
