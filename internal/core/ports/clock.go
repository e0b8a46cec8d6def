package ports

import "time"

// Clock is the only source of time of the core.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces identifiers for new entities.
type IDGenerator interface {
	// SessionKeyID returns an id in the form session_<unixNanos>.
	SessionKeyID() string
	// NewID returns a random unique id.
	NewID() string
}
