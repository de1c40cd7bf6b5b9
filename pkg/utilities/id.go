package utilities

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	ksuidMu   sync.Mutex
	lastKSUID ksuid.KSUID
)

// NewKSUID generates a new globally unique KSUID string. KSUIDs only have
// second resolution, so within one process each id is forced past the
// previous one and ordering rows by id gives insertion order.
func NewKSUID() string {
	ksuidMu.Lock()
	defer ksuidMu.Unlock()
	id := ksuid.New()
	if ksuid.Compare(id, lastKSUID) <= 0 {
		id = lastKSUID.Next()
	}
	lastKSUID = id
	return id.String()
}

// SnowflakeGenerator hands out snowflake IDs from a single node. One node
// must be shared: a fresh node per call restarts its sequence and can
// repeat IDs within the same millisecond.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator returns a generator for nodeID. Invalid node IDs
// fall back to node 1.
func NewSnowflakeGenerator(nodeID int64) *SnowflakeGenerator {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		node, _ = snowflake.NewNode(1)
	}
	return &SnowflakeGenerator{node: node}
}

// Next returns the next snowflake ID string, or a KSUID when the generator
// was never initialized.
func (g *SnowflakeGenerator) Next() string {
	if g == nil || g.node == nil {
		return NewKSUID()
	}
	return g.node.Generate().String()
}
