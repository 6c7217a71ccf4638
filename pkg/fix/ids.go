package fix

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// ClOrdIDGenerator issues client order IDs that are unique within and
// across process runs: a monotonic sequence joined with a random
// uuid-derived suffix.
type ClOrdIDGenerator struct {
	seq atomic.Uint64
}

// Next returns a fresh client order ID.
func (g *ClOrdIDGenerator) Next() string {
	n := g.seq.Add(1)
	return fmt.Sprintf("%d-%s", n, uuid.NewString()[:8])
}
