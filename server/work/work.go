package work

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/sentinela-io/sentinela/server/logger"
)

const (
	MAX_FAILS       = 4
	MAX_CONCURRENCY = 1

	// in-progress jobs untouched for this long are considered stuck
	stuckJobThresholdMinutes = 10
)

var (
	DefaultTickerDuration = 5 * time.Millisecond
	TickerDurationOnError = 10 * time.Millisecond

	ErrDuplicateHandler = errors.New("handler with provided name already mapped")

	logg = logger.NewLogger()
)

// JobParams describes a job to enqueue. Unique jobs are skipped when a
// job with the same name is already enqueued or in-progress.
type JobParams struct {
	Name    string
	Handler string
	Unique  bool
	Args    map[string]interface{}
}

type Handler func(map[string]interface{}) error

func makeIdentifier() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "0000"
	}

	return hex.EncodeToString(bytes)
}
