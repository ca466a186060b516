package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/case-service/internal/config"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/service"
)

func TestStartNotificationWorker(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher()

	started := StartNotificationWorker(service.NewNotificationService(dispatcher, logger, config.NotificationConfig{}), logger)
	require.True(t, started)
	assert.Equal(t, 1, logs.FilterMessage("notification worker started").Len())

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventMessageEdited, CaseID: 3}))
	assert.Equal(t, 1, logs.FilterMessage("MessageEdited").Len())
}

func TestStartNotificationWorker_Nil(t *testing.T) {
	assert.False(t, StartNotificationWorker(nil, zap.NewNop()))
}
