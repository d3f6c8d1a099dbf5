package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

// MaxLogEntries is how many operational log entries are retained.
const MaxLogEntries = 50

// OpLog is the capped, newest-first diagnostic log of cloud operations.
type OpLog struct {
	mu      sync.Mutex
	max     int
	entries []domain.LogEntry
	now     func() time.Time
}

func NewOpLog() *OpLog {
	return &OpLog{max: MaxLogEntries, now: time.Now}
}

// Add prepends an entry, evicting the oldest beyond the cap.
func (l *OpLog) Add(action string, status domain.LogStatus, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := domain.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: l.now().Format("15:04:05"),
		Action:    action,
		Status:    status,
		Message:   message,
	}
	l.entries = append([]domain.LogEntry{entry}, l.entries...)
	if len(l.entries) > l.max {
		l.entries = l.entries[:l.max]
	}
}

func (l *OpLog) Success(action, message string) {
	l.Add(action, domain.LogSuccess, message)
}

func (l *OpLog) Error(action, message string) {
	l.Add(action, domain.LogError, message)
}

// Entries returns a copy of the log, newest first.
func (l *OpLog) Entries() []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
