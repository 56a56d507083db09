package codec

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validator checks proposed codec configurations against a capability.
//
// The contract is symmetric: Validate(capability, proposed) succeeds when
// every selector field of the proposal is contained in the capability. The
// acceptor side validates a remote proposal against the local endpoint's
// capability; the initiator side validates each local preset against the
// remote endpoint's advertised capability.
type Validator interface {
	// Type returns the codec family this validator handles.
	Type() Type

	// Validate checks proposed against capability. It fails with
	// ErrInvalidConfigSize when the proposal does not have the codec's
	// fixed structure size and ErrInvalidConfig on a field mismatch.
	Validate(capability, proposed *Preset) error
}

// validators is the closed set of codec strategies. Extending the profile
// to another codec family means adding an entry here; the orchestration
// layer stays untouched.
var validators = map[Type]Validator{
	TypeSBC: sbcValidator{},
}

// ValidatorFor returns the strategy for a codec family, or
// ErrUnsupportedCodec when none is implemented.
func ValidatorFor(t Type) (Validator, error) {
	v, ok := validators[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, t)
	}
	return v, nil
}

// Validate checks a proposed configuration against a capability for the
// given codec family. This is the acceptor-side entry point.
func Validate(t Type, capability, proposed *Preset) error {
	v, err := ValidatorFor(t)
	if err != nil {
		return err
	}
	return v.Validate(capability, proposed)
}

// Select returns the first preset in acceptable that the remote capability
// supports, preserving registration order. This is the initiator-side entry
// point; it fails with ErrNoMatchingPreset when nothing matches and
// ErrUnsupportedCodec when the codec family is not implemented.
func Select(t Type, acceptable []*Preset, remoteCapability *Preset) (*Preset, error) {
	v, err := ValidatorFor(t)
	if err != nil {
		return nil, err
	}

	for i, preset := range acceptable {
		if err := v.Validate(remoteCapability, preset); err == nil {
			logrus.WithFields(logrus.Fields{
				"function": "Select",
				"codec":    t.String(),
				"index":    i,
			}).Debug("Selected codec preset")
			return preset, nil
		}
	}

	return nil, ErrNoMatchingPreset
}
