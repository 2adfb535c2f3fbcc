package optimization

import (
	"sync"
	"time"
)

// ProgressTracker counts completed combinations so long grid searches can
// report progress from another goroutine.
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a tracker for the given number of combinations.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment records one completed combination.
func (pt *ProgressTracker) Increment() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
}

// GetProgress returns completed count, total, percent complete and elapsed
// time since the tracker was created.
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	percent := 0.0
	if pt.total > 0 {
		percent = float64(pt.completed) / float64(pt.total) * 100
	}
	return pt.completed, pt.total, percent, elapsed
}

// EstimateTimeRemaining projects the remaining runtime from the average time
// per completed combination. Returns zero before the first completion.
func (pt *ProgressTracker) EstimateTimeRemaining() time.Duration {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.completed == 0 {
		return 0
	}
	avg := time.Since(pt.startTime) / time.Duration(pt.completed)
	return avg * time.Duration(pt.total-pt.completed)
}
