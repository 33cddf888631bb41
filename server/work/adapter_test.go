package work

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/sentinela-io/sentinela/server/models"
	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) WriteString(s string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.WriteString(s)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC")
	outputBuffer := &syncBuffer{}

	// Register job function
	writeToBuffer := func(m map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello")
		return err
	}
	workerPool.Register("write_to_buffer", writeToBuffer)

	err := workerPool.Perform(JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{},
	})
	assert.Nil(t, err)
	assert.Empty(t, outputBuffer.String(), "Expected outputBuffer to be empty before workers start")

	workerPool.Start()

	// Wait for job to be processed
	time.Sleep(2 * time.Second)

	workerPool.Stop()

	assert.Equal(t, "Hello", outputBuffer.String(), "Expected job to write to outputBuffer")
}

func TestPerformUniqueJobIsEnqueuedOnce(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC")
	outputBuffer := &syncBuffer{}

	writeToBuffer := func(m map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello")
		return err
	}
	workerPool.Register("write_to_buffer", writeToBuffer)

	job := JobParams{
		Name:    "write_once",
		Handler: "write_to_buffer",
		Unique:  true,
		Args:    map[string]interface{}{},
	}

	// a duplicate unique job is silently skipped
	assert.Nil(t, workerPool.Perform(job))
	assert.Nil(t, workerPool.Perform(job))

	workerPool.Start()
	time.Sleep(2 * time.Second)
	workerPool.Stop()

	assert.Equal(t, "Hello", outputBuffer.String(), "Expected unique job to run exactly once")
}

func TestRegisterDuplicateHandler(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC")

	noop := func(m map[string]interface{}) error { return nil }
	assert.Nil(t, workerPool.Register("noop", noop))
	assert.ErrorIs(t, workerPool.Register("noop", noop), ErrDuplicateHandler)
}
