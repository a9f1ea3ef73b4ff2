package pkguid

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/bwmarrin/snowflake"
)

// batchEpoch is 2024-01-01T00:00:00Z in milliseconds.
const batchEpoch int64 = 1704067200000

const maxNode = 1 << 10

// Snowflake generates numeric, time-ordered ids with bwmarrin/snowflake.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake picks a random node so concurrent uploader runs do not
// collide.
func NewSnowflake() (*Snowflake, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxNode))
	if err != nil {
		return nil, fmt.Errorf("random snowflake node: %w", err)
	}

	return NewSnowflakeNode(n.Int64())
}

// NewSnowflakeNode builds a generator for a fixed node in [0, 1023].
func NewSnowflakeNode(nodeID int64) (*Snowflake, error) {
	snowflake.Epoch = batchEpoch

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}

	return &Snowflake{node: node}, nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
