package log

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		Timestamp:    time.Date(2026, 1, 15, 10, 30, 0, 123456789, time.UTC),
		Category:     CategoryError,
		ConnectionID: "4f2c6a7e-9c01-4b7d-8b1a-0f3d2e5c6a7b",
		RemoteAddr:   "peer-a.example:9001",
		Message:      "connection to peer-a.example:9001 failed (next retry in 5s)",
		Error: &ErrorEventData{
			Message: "dial failed: connection refused",
			Target:  "peer-a.example:9001",
			Network: true,
		},
	}
}

func TestEventRoundTrip(t *testing.T) {
	original := sampleEvent()

	data, err := EncodeEvent(original)
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.True(t, decoded.Timestamp.Equal(original.Timestamp), "nanosecond precision must survive encoding")
	assert.Equal(t, original.Category, decoded.Category)
	assert.Equal(t, original.ConnectionID, decoded.ConnectionID)
	assert.Equal(t, original.RemoteAddr, decoded.RemoteAddr)
	assert.Equal(t, original.Message, decoded.Message)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, *original.Error, *decoded.Error)
	assert.Nil(t, decoded.Attempt)
	assert.Nil(t, decoded.StateChange)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "INFO", CategoryInfo.String())
	assert.Equal(t, "ATTEMPT", CategoryAttempt.String())
	assert.Equal(t, "CONNECTED", CategoryConnected.String())
	assert.Equal(t, "ERROR", CategoryError.String())
	assert.Equal(t, "STATE", CategoryState.String())
	assert.Equal(t, "UNKNOWN", Category(200).String())
}

func TestFileLoggerWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	logger.Log(Event{
		Timestamp:  base,
		Category:   CategoryAttempt,
		RemoteAddr: "peer-a.example:9001",
		Attempt:    &AttemptEvent{FailureCount: 0},
	})
	logger.Log(Event{
		Timestamp:  base.Add(2 * time.Second),
		Category:   CategoryError,
		RemoteAddr: "peer-a.example:9001",
		Error:      &ErrorEventData{Message: "connection refused", Network: true},
	})
	logger.Log(Event{
		Timestamp:    base.Add(7 * time.Second),
		Category:     CategoryConnected,
		ConnectionID: "conn-1",
		RemoteAddr:   "peer-b.example:9001",
	})
	require.NoError(t, logger.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	events, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, CategoryAttempt, events[0].Category)
	assert.Equal(t, CategoryError, events[1].Category)
	assert.Equal(t, CategoryConnected, events[2].Category)
}

func TestFileLoggerAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		require.NoError(t, err)
		logger.Log(Event{Timestamp: time.Now(), Category: CategoryInfo})
		require.NoError(t, logger.Close())
	}

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	events, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestFileLoggerLogAfterCloseIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	assert.NotPanics(t, func() {
		logger.Log(Event{Timestamp: time.Now(), Category: CategoryInfo})
	})

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	events, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		cat := CategoryAttempt
		if i%2 == 1 {
			cat = CategoryError
		}
		logger.Log(Event{
			Timestamp:    base.Add(time.Duration(i) * time.Second),
			Category:     cat,
			ConnectionID: "conn-1",
		})
	}
	require.NoError(t, logger.Close())

	t.Run("by category", func(t *testing.T) {
		cat := CategoryError
		reader, err := NewFilteredReader(path, Filter{Category: &cat})
		require.NoError(t, err)
		defer reader.Close()

		events, err := reader.ReadAll()
		require.NoError(t, err)
		require.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, CategoryError, e.Category)
		}
	})

	t.Run("by time window", func(t *testing.T) {
		start := base.Add(time.Second)
		end := base.Add(3 * time.Second)
		reader, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
		require.NoError(t, err)
		defer reader.Close()

		events, err := reader.ReadAll()
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("by connection id no match", func(t *testing.T) {
		reader, err := NewFilteredReader(path, Filter{ConnectionID: "conn-other"})
		require.NoError(t, err)
		defer reader.Close()

		events, err := reader.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

// recordingLogger captures events for fan-out assertions.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	multi := NewMultiLogger(a, b, NoopLogger{})

	multi.Log(sampleEvent())

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, a.events[0].Message, b.events[0].Message)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(sampleEvent())

	out := buf.String()
	assert.Contains(t, out, "category=ERROR")
	assert.Contains(t, out, "peer-a.example:9001")
	assert.Contains(t, out, "level=WARN")

	buf.Reset()
	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "STOPPED",
			NewState: "RUNNING",
			Reason:   "start requested",
		},
	})
	out = buf.String()
	assert.Contains(t, out, "old_state=STOPPED")
	assert.Contains(t, out, "new_state=RUNNING")
	assert.Contains(t, out, "level=DEBUG")
}

func TestNoopLoggerDoesNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopLogger{}.Log(sampleEvent())
	})
}
