package brick

import "errors"

// ErrUnknownKind is returned when creating a brick of an unregistered kind.
var ErrUnknownKind = errors.New("unknown brick kind")

// ErrInvalidConfig is returned for missing or contradictory construction
// parameters.
var ErrInvalidConfig = errors.New("invalid brick config")

// ErrEdgeLimitExceeded is returned when linking beyond a side's capacity.
var ErrEdgeLimitExceeded = errors.New("edge limit exceeded")

// ErrNoLink is returned when a burst is forwarded through an empty slot, or
// when no edge connects two bricks.
var ErrNoLink = errors.New("no link")

// ErrDuplicateName is returned when a name is already taken.
var ErrDuplicateName = errors.New("duplicate name")

// ErrInvalidArgument covers misuse such as releasing a nil brick or using a
// destroyed one.
var ErrInvalidArgument = errors.New("invalid argument")
