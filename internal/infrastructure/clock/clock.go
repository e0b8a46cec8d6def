package clock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"go.uber.org/atomic"
)

type systemClock struct{}

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

type idGenerator struct {
	clock ports.Clock
	last  *atomic.Int64
}

// NewIDGenerator returns an IDGenerator deriving session key ids from the
// given clock. Ids are strictly increasing within the process even if the
// clock does not move.
func NewIDGenerator(clock ports.Clock) ports.IDGenerator {
	return &idGenerator{clock, atomic.NewInt64(0)}
}

func (g *idGenerator) SessionKeyID() string {
	now := g.clock.Now().UnixNano()
	for {
		last := g.last.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if g.last.CAS(last, next) {
			return fmt.Sprintf("session_%d", next)
		}
	}
}

func (g *idGenerator) NewID() string {
	return uuid.New().String()
}
