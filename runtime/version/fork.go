// Package version defines the closed set of consensus forks.
package version

import (
	"github.com/pkg/errors"
)

// Fork identifies a consensus fork. Forks are ordered; later forks compare greater.
type Fork int

const (
	Phase0 Fork = iota
	Altair
	Bellatrix
	Capella
	Deneb
)

var forkNames = map[Fork]string{
	Phase0:    "phase0",
	Altair:    "altair",
	Bellatrix: "bellatrix",
	Capella:   "capella",
	Deneb:     "deneb",
}

// ErrUnknownFork is returned when parsing an unrecognised fork name.
var ErrUnknownFork = errors.New("unknown fork")

// String returns the lowercase name of the fork.
func (f Fork) String() string {
	if n, ok := forkNames[f]; ok {
		return n
	}
	return "unknown version"
}

// FromString parses a fork name.
func FromString(name string) (Fork, error) {
	for f, n := range forkNames {
		if n == name {
			return f, nil
		}
	}
	return 0, errors.Wrap(ErrUnknownFork, name)
}

// All returns every fork in activation order.
func All() []Fork {
	return []Fork{Phase0, Altair, Bellatrix, Capella, Deneb}
}
