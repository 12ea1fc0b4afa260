package tui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type jobKind string

type jobStatus string

const (
	jobKindChat   jobKind = "chat"
	jobKindRender jobKind = "render"
	jobKindIngest jobKind = "ingest"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs background work as tea commands and keeps the latest snapshot
// per job for the status bar.
type jobBus struct {
	counter int64
	log     *logrus.Entry

	mu      sync.Mutex
	running map[string]jobSnapshot
}

func newJobBus(logger *logrus.Logger) *jobBus {
	return &jobBus{
		log:     logger.WithField("component", "jobs"),
		running: map[string]jobSnapshot{},
	}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		ctx := context.Background()
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		entry := b.log.WithFields(logrus.Fields{
			"job":      id,
			"status":   snapshot.Status,
			"duration": snapshot.Duration,
		})
		if err != nil {
			entry.WithError(err).Warn("job finished")
		} else {
			entry.Info("job finished")
		}
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// Track records a snapshot delivered through Update.
func (b *jobBus) Track(snapshot jobSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if snapshot.Status == jobStatusRunning {
		b.running[snapshot.ID] = snapshot
		return
	}
	delete(b.running, snapshot.ID)
}

// Running counts in-flight jobs per kind.
func (b *jobBus) Running() map[jobKind]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	counts := map[jobKind]int{}
	for _, snap := range b.running {
		counts[snap.Kind]++
	}
	return counts
}
