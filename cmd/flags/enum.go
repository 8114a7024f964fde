package flags

// via https://github.com/urfave/cli/issues/602

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var errNotInEnum = errors.New("value not allowed")

// EnumValue describes a string flag restricted to a fixed set of values.
// Values are compared case-insensitively.
type EnumValue struct {
	Name  string
	Usage string
	Enum  []string
	Value string
}

// Check returns an error unless value is one of the allowed values.
func (e *EnumValue) Check(value string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, enum := range e.Enum {
		if strings.ToLower(enum) == v {
			return nil
		}
	}
	return errors.Wrapf(errNotInEnum, "--%s=%q: allowed values are %s", e.Name, value, strings.Join(e.Enum, ", "))
}

// StringFlag presents the enum as a string flag rejecting values outside it.
func (e *EnumValue) StringFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  e.Name,
		Usage: e.Usage + " (" + strings.Join(e.Enum, ", ") + ")",
		Value: e.Value,
		Action: func(_ *cli.Context, v string) error {
			return e.Check(v)
		},
	}
}
