// Package progress delivers per-job stage events to registered subscribers,
// typically a websocket or SSE bridge in the serving layer.
package progress

import (
	"math"
	"sync"
)

// Job stages, in pipeline order.
const (
	StageInitializing = "initializing"
	StageScraping     = "scraping"
	StageEnriching    = "enriching"
	StageExtracting   = "extracting"
	StageSaving       = "saving"
	StageCompleted    = "completed"
	StageError        = "error"
)

// Event is one progress update for a job.
type Event struct {
	JobID      string `json:"job_id"`
	Stage      string `json:"stage"`
	Progress   int    `json:"progress"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// Callback receives events for one job. Callbacks run synchronously on the
// publisher's goroutine and must not block.
type Callback func(Event)

// Bus routes events to per-job subscribers. Registration is rare, publishing
// is frequent; an RWMutex keeps publishes cheap.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]Callback
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]Callback)}
}

// Subscribe registers cb for jobID, replacing any existing subscriber.
func (b *Bus) Subscribe(jobID string, cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[jobID] = cb
}

// Unsubscribe removes the subscriber for jobID.
func (b *Bus) Unsubscribe(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, jobID)
}

// Publish sends an event to the job's subscriber, computing the percentage.
// Events for jobs with no subscriber are dropped silently.
func (b *Bus) Publish(jobID, stage string, progress, total int, message string) {
	b.mu.RLock()
	cb, ok := b.subs[jobID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(progress) / float64(total) * 100))
	}
	cb(Event{
		JobID:      jobID,
		Stage:      stage,
		Progress:   progress,
		Total:      total,
		Percentage: pct,
		Message:    message,
	})
}
