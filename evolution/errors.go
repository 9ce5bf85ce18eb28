package evolution

import "errors"

// ErrInvalidConfig is wrapped by Config.Validate to report which §6
// invariant was violated.
var ErrInvalidConfig = errors.New("evolution: invalid configuration")

// ErrCheckpointMalformed is returned when a checkpoint fails to
// deserialise (wrong length, missing field, invalid numeric). The
// runner treats this as a fatal load error; there is no recovery path.
var ErrCheckpointMalformed = errors.New("evolution: malformed checkpoint")
