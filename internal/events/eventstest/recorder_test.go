package eventstest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/stretchr/testify/require"
)

var _ events.Publisher = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), events.BookingCreated, map[string]string{"id": "b-1"}))
	require.Equal(t, []string{events.BookingCreated}, r.Keys())

	var body map[string]string
	require.NoError(t, json.Unmarshal(r.Events[0].Body, &body))
	require.Equal(t, "b-1", body["id"])

	r.Err = errors.New("broker down")
	require.Error(t, r.Publish(context.Background(), events.ContactReceived, nil))
	require.Len(t, r.Events, 1)
}
