package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventComplaintClosed, func(_ context.Context, e Event) error {
		seen = append(seen, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventComplaintClosed, func(_ context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventCallEnded, func(_ context.Context, e Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintClosed})
	assert.ErrorContains(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventSurveySubmitted}))
}
