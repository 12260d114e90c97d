package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	initErr error
	once    sync.Once
)

// Init prepares the process-wide Snowflake node. Only the first call has an effect;
// later calls return the outcome of the first one.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
		if initErr != nil {
			initErr = fmt.Errorf("creating snowflake node %d: %w", nodeID, initErr)
		}
	})
	return initErr
}

// New returns a time-ordered int64 ID for users, chat turns and reports.
// Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}
