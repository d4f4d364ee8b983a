package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector interface for data layer metrics
type Collector interface {
	BatchCommit(collection string, ops int, err error)
	StoreOperation(driver, operation string, err error)
	SendAttempt(outcome string)
	QueueDepth(depth int)
}

// NoOpCollector implements Collector with no-op methods
type NoOpCollector struct{}

func (NoOpCollector) BatchCommit(string, int, error)        {}
func (NoOpCollector) StoreOperation(string, string, error) {}
func (NoOpCollector) SendAttempt(string)                   {}
func (NoOpCollector) QueueDepth(int)                       {}

// DataCollector collects data layer metrics
type DataCollector struct {
	// Batch metrics
	batchCommits atomic.Int64
	batchErrors  atomic.Int64
	deletedDocs  atomic.Int64

	// Store metrics
	storeOperations atomic.Int64
	storeErrors     atomic.Int64

	// Delivery metrics
	queueDepth atomic.Int32
	sendMu     sync.Mutex
	sends      map[string]int64

	// Timing metrics
	lastCommit atomic.Value // time.Time
	lastSend   atomic.Value // time.Time
}

// Stats is a point-in-time snapshot of a DataCollector.
type Stats struct {
	BatchCommits    int64            `json:"batch_commits"`
	BatchErrors     int64            `json:"batch_errors"`
	DeletedDocs     int64            `json:"deleted_docs"`
	StoreOperations int64            `json:"store_operations"`
	StoreErrors     int64            `json:"store_errors"`
	QueueDepth      int32            `json:"queue_depth"`
	Sends           map[string]int64 `json:"sends"`
	LastCommit      time.Time        `json:"last_commit,omitempty"`
	LastSend        time.Time        `json:"last_send,omitempty"`
}

// NewDataCollector creates a new data collector
func NewDataCollector() *DataCollector {
	return &DataCollector{sends: make(map[string]int64)}
}

// BatchCommit records one batch commit of ops deletes
func (c *DataCollector) BatchCommit(_ string, ops int, err error) {
	if err != nil {
		c.batchErrors.Add(1)
		return
	}
	c.batchCommits.Add(1)
	c.deletedDocs.Add(int64(ops))
	c.lastCommit.Store(time.Now())
}

// StoreOperation records a document store call
func (c *DataCollector) StoreOperation(_, _ string, err error) {
	c.storeOperations.Add(1)
	if err != nil {
		c.storeErrors.Add(1)
	}
}

// SendAttempt records a message send attempt by outcome
func (c *DataCollector) SendAttempt(outcome string) {
	c.sendMu.Lock()
	c.sends[outcome]++
	c.sendMu.Unlock()
	c.lastSend.Store(time.Now())
}

// QueueDepth records the current offline queue length
func (c *DataCollector) QueueDepth(depth int) {
	c.queueDepth.Store(int32(depth))
}

// Stats returns a snapshot of the collected metrics
func (c *DataCollector) Stats() Stats {
	s := Stats{
		BatchCommits:    c.batchCommits.Load(),
		BatchErrors:     c.batchErrors.Load(),
		DeletedDocs:     c.deletedDocs.Load(),
		StoreOperations: c.storeOperations.Load(),
		StoreErrors:     c.storeErrors.Load(),
		QueueDepth:      c.queueDepth.Load(),
		Sends:           make(map[string]int64),
	}
	c.sendMu.Lock()
	for k, v := range c.sends {
		s.Sends[k] = v
	}
	c.sendMu.Unlock()
	if t, ok := c.lastCommit.Load().(time.Time); ok {
		s.LastCommit = t
	}
	if t, ok := c.lastSend.Load().(time.Time); ok {
		s.LastSend = t
	}
	return s
}
