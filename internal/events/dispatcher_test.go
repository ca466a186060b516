package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryDispatcher_PublishesToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventCaseCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventCaseCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseCreated, CaseID: 1}))
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventMessageEdited, CaseID: 1}))
	assert.Equal(t, []EventType{EventCaseCreated, EventCaseCreated}, got)
}

func TestInMemoryDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	called := false
	d.Subscribe(EventMessageCreated, func(context.Context, Event) error { return boom })
	d.Subscribe(EventMessageCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventMessageCreated})
	assert.ErrorIs(t, err, boom)
	assert.True(t, called)
}
