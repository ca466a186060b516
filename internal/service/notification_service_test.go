package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/case-service/internal/config"
	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
)

func TestNotificationService_LogsCaseEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifier := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{WebhookURL: "http://hooks.local/case"})
	notifier.RegisterHandlers()

	store := repository.NewMemoryStore()
	svc := NewCaseService(CaseDependencies{Store: store, Dispatcher: dispatcher})
	ctx := context.Background()

	owner, err := NewUserService(store).CreateUser(ctx, "owner", domain.UserTypeUser)
	require.NoError(t, err)
	c, err := svc.CreateCase(ctx, owner.ID, "printer jam")
	require.NoError(t, err)
	_, _, err = svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "help"})
	require.NoError(t, err)
	_, err = svc.CloseCase(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("CaseCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("MessageCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("CaseStatusChanged").Len())

	webhooks := logs.FilterMessage("sendWebhookNotificationStub").All()
	require.Len(t, webhooks, 2)
	assert.Equal(t, "http://hooks.local/case", webhooks[0].ContextMap()["url"])
	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len(), "email stub is off without a sender address")
}

func TestNotificationService_NilDispatcher(t *testing.T) {
	notifier := NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{})
	assert.NotPanics(t, notifier.RegisterHandlers)
}
