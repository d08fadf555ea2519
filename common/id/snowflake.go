package id

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// The server and the worker must run with different node IDs.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID using the Snowflake algorithm.
// IDs are time-ordered, so a larger ID was generated later.
func New() int64 {
	return node.Generate().Int64()
}

// Parse reads an ID from its decimal string form, as it arrives in URLs and queue messages.
func Parse(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing id %q: %w", raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return v, nil
}
