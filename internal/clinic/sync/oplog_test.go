package sync

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

func TestOpLogNewestFirst(t *testing.T) {
	l := NewOpLog()
	l.Success("Sincronización", "primera")
	l.Error("Guardado Personal", "segunda")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "segunda", entries[0].Message)
	assert.Equal(t, domain.LogError, entries[0].Status)
	assert.Equal(t, "primera", entries[1].Message)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestOpLogCapsAtFifty(t *testing.T) {
	l := NewOpLog()
	for i := 1; i <= MaxLogEntries+1; i++ {
		l.Success("Sincronización", fmt.Sprintf("entrada %d", i))
	}

	entries := l.Entries()
	require.Len(t, entries, MaxLogEntries)
	// Newest survives at the front, the oldest was evicted.
	assert.Equal(t, "entrada 51", entries[0].Message)
	assert.Equal(t, "entrada 2", entries[len(entries)-1].Message)
}

func TestOpLogEntriesReturnsCopy(t *testing.T) {
	l := NewOpLog()
	l.Success("Sincronización", "original")

	entries := l.Entries()
	entries[0].Message = "mutada"

	assert.Equal(t, "original", l.Entries()[0].Message)
}
