package calendar

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These run entirely offline: timezone and datetime validation happen before
// any credential or network use.

func TestCreateEventInvalidTimezone(t *testing.T) {
	c := NewClient("Not/AZone", "credentials.json", "token.json")

	_, err := c.CreateEvent(context.Background(), Event{
		Summary: "meeting",
		Start:   "2025-01-01 10:00",
		End:     "2025-01-01 11:00",
	})

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindInvalidTimezone, cerr.Kind)
}

func TestCreateEventBadDatetime(t *testing.T) {
	c := NewClient("UTC", "credentials.json", "token.json")

	for _, ev := range []Event{
		{Summary: "meeting", Start: "tomorrow", End: "2025-01-01 11:00"},
		{Summary: "meeting", Start: "2025-01-01 10:00", End: "11am"},
	} {
		_, err := c.CreateEvent(context.Background(), ev)
		var cerr *Error
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, KindBadTime, cerr.Kind)
	}
}

func TestCreateEventMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	c := NewClient("UTC", filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json"))

	_, err := c.CreateEvent(context.Background(), Event{
		Summary: "meeting",
		Start:   "2025-01-01 10:00",
		End:     "2025-01-01 11:00",
	})

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindUnavailable, cerr.Kind)
}
