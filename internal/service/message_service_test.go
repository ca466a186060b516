package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

func TestCreateMessage_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	other := f.user(t, "other", domain.UserTypeUser)

	c, err := f.svc.CreateCase(ctx, owner.ID, "printer jam")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, domain.CaseStatusOpen, c.Status)

	msg, attachment, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "help"})
	require.NoError(t, err)
	assert.Nil(t, attachment)
	assert.Equal(t, int64(1), msg.ID)

	_, _, err = f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: other.ID, Content: "hi"})
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.CloseCase(ctx, c.ID)
	require.NoError(t, err)
	_, _, err = f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "help"})
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.svc.ReopenCase(ctx, c.ID)
	require.NoError(t, err)
	msg, _, err = f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "help"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), msg.ID)
}

func TestCreateMessage_SenderTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	staff := f.user(t, "agent", domain.UserTypeStaff)
	ai := f.user(t, "assistant", domain.UserTypeAI)
	robot := f.user(t, "robot", "bot")
	c := f.openCase(t, owner.ID)

	tests := []struct {
		name     string
		senderID int64
		wantCode string
	}{
		{"owner", owner.ID, ""},
		{"staff on someone else's case", staff.ID, ""},
		{"AI on someone else's case", ai.ID, ""},
		{"unknown type", robot.ID, apperrors.CodeForbidden},
		{"missing sender", 99, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: tt.senderID, Content: "status update"})
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.senderID, msg.SenderID)
			assert.Equal(t, c.ID, msg.CaseID)
		})
	}
}

func TestCreateMessage_StaffCannotPostToClosedOrMissingCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.user(t, "agent", domain.UserTypeStaff)
	c := f.openCase(t, 1)
	_, err := f.svc.CloseCase(ctx, c.ID)
	require.NoError(t, err)

	_, _, err = f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: staff.ID, Content: "hello"})
	assertCode(t, err, apperrors.CodeNotFound)

	_, _, err = f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: 77, SenderID: staff.ID, Content: "hello"})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreateMessage_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	c := f.openCase(t, owner.ID)

	tests := []struct {
		name    string
		input   MessageCreateInput
		message string
	}{
		{"missing sender", MessageCreateInput{CaseID: c.ID, Content: "hi"}, "sender_id and content are required"},
		{"missing content", MessageCreateInput{CaseID: c.ID, SenderID: owner.ID}, "sender_id and content are required"},
		{"blank content", MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: " \n\t "}, "message content cannot be empty"},
		{"invalid content beats missing case", MessageCreateInput{CaseID: 99, SenderID: owner.ID, Content: "  "}, "message content cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.CreateMessage(ctx, tt.input)
			assertCode(t, err, apperrors.CodeInvalidInput)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCreateMessage_TrimsContent(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner", domain.UserTypeUser)
	c := f.openCase(t, owner.ID)

	msg, _, err := f.svc.CreateMessage(context.Background(), MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "  still broken \n"})
	require.NoError(t, err)
	assert.Equal(t, "still broken", msg.Content)
	assert.Equal(t, fixedNow, msg.CreatedAt)
}

func TestCreateMessage_AttachmentWithThumbnail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	c := f.openCase(t, owner.ID)
	f.thumbs.On("Generate", mock.Anything, "http://files/jam.png", "jam.png").Return("public/thumbnails/thumb_jam.png")

	msg, attachment, err := f.svc.CreateMessage(ctx, MessageCreateInput{
		CaseID:     c.ID,
		SenderID:   owner.ID,
		Content:    "see photo",
		Attachment: &domain.AttachmentInput{FileName: "jam.png", FileURL: "http://files/jam.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, attachment)
	assert.Equal(t, int64(1), attachment.ID)
	assert.Equal(t, msg.ID, attachment.MessageID)
	require.NotNil(t, attachment.ThumbnailURL)
	assert.Equal(t, "public/thumbnails/thumb_jam.png", *attachment.ThumbnailURL)
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "jam.png", msg.Attachment.FileName)

	stored, err := f.svc.ListAttachments(ctx, c.ID, msg.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].ThumbnailURL)
	assert.Equal(t, "public/thumbnails/thumb_jam.png", *stored[0].ThumbnailURL)

	assert.Equal(t, []events.EventType{events.EventCaseCreated, events.EventMessageCreated, events.EventAttachmentCreated}, f.dispatcher.types())
	f.thumbs.AssertExpectations(t)
}

func TestCreateMessage_ThumbnailFailureKeepsAttachment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	c := f.openCase(t, owner.ID)
	f.thumbs.On("Generate", mock.Anything, "http://unreachable.invalid/x.png", "x.png").Return(nil)

	msg, attachment, err := f.svc.CreateMessage(ctx, MessageCreateInput{
		CaseID:     c.ID,
		SenderID:   owner.ID,
		Content:    "see file",
		Attachment: &domain.AttachmentInput{FileName: "x.png", FileURL: "http://unreachable.invalid/x.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, attachment)
	assert.Nil(t, attachment.ThumbnailURL)

	stored, err := f.svc.ListAttachments(ctx, c.ID, msg.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].ThumbnailURL)
}

func TestCreateMessage_InvalidAttachmentLeavesNoMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	c := f.openCase(t, owner.ID)

	for _, input := range []*domain.AttachmentInput{
		{FileName: "", FileURL: "http://files/x.png"},
		{FileName: "x.png", FileURL: ""},
	} {
		_, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "file", Attachment: input})
		assertCode(t, err, apperrors.CodeInvalidInput)
	}

	msgs, err := f.svc.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	f.thumbs.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateMessage_NoThumbnailerConfigured(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewCaseService(CaseDependencies{Store: store})
	users := NewUserService(store)
	ctx := context.Background()

	owner, err := users.CreateUser(ctx, "owner", domain.UserTypeUser)
	require.NoError(t, err)
	c, err := svc.CreateCase(ctx, owner.ID, "printer jam")
	require.NoError(t, err)

	_, attachment, err := svc.CreateMessage(ctx, MessageCreateInput{
		CaseID: c.ID, SenderID: owner.ID, Content: "file",
		Attachment: &domain.AttachmentInput{FileName: "a.png", FileURL: "http://files/a.png"},
	})
	require.NoError(t, err)
	assert.Nil(t, attachment.ThumbnailURL)
}

func TestCreateMessage_ConcurrentSendersGetUniqueIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.user(t, "agent", domain.UserTypeStaff)
	c := f.openCase(t, 1)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: staff.ID, Content: "ping"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs, err := f.svc.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, n)
	seen := map[int64]bool{}
	for _, msg := range msgs {
		assert.False(t, seen[msg.ID])
		seen[msg.ID] = true
		assert.LessOrEqual(t, msg.ID, int64(n))
	}
}

func TestEditMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	staff := f.user(t, "agent", domain.UserTypeStaff)
	c := f.openCase(t, owner.ID)
	original, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "help"})
	require.NoError(t, err)

	t.Run("original sender edits", func(t *testing.T) {
		edited, err := f.svc.EditMessage(ctx, c.ID, original.ID, owner.ID, "  help please  ")
		require.NoError(t, err)
		assert.Equal(t, "help please", edited.Content)
		assert.Equal(t, original.ID, edited.ID)
		assert.Equal(t, original.CaseID, edited.CaseID)
		assert.Equal(t, original.CreatedAt, edited.CreatedAt)

		msgs, err := f.svc.ListMessages(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "help please", msgs[0].Content)
	})

	t.Run("staff cannot edit another sender's message", func(t *testing.T) {
		_, err := f.svc.EditMessage(ctx, c.ID, original.ID, staff.ID, "overwritten")
		assertCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("blank content", func(t *testing.T) {
		_, err := f.svc.EditMessage(ctx, c.ID, original.ID, owner.ID, "   ")
		assertCode(t, err, apperrors.CodeInvalidInput)
	})

	t.Run("wrong sender is reported before blank content", func(t *testing.T) {
		_, err := f.svc.EditMessage(ctx, c.ID, original.ID, staff.ID, "   ")
		assertCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("missing message", func(t *testing.T) {
		_, err := f.svc.EditMessage(ctx, c.ID, 99, owner.ID, "x")
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("closed case", func(t *testing.T) {
		_, err := f.svc.CloseCase(ctx, c.ID)
		require.NoError(t, err)
		_, err = f.svc.EditMessage(ctx, c.ID, original.ID, owner.ID, "x")
		assertCode(t, err, apperrors.CodeNotFound)
	})
}

func TestListMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	first := f.openCase(t, owner.ID)
	second := f.openCase(t, owner.ID)

	for _, content := range []string{"one", "two"} {
		_, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: first.ID, SenderID: owner.ID, Content: content})
		require.NoError(t, err)
	}
	_, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: second.ID, SenderID: owner.ID, Content: "elsewhere"})
	require.NoError(t, err)

	msgs, err := f.svc.ListMessages(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)

	_, err = f.svc.ListMessages(ctx, 99)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.svc.CloseCase(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.svc.ListMessages(ctx, first.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestListAttachments_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", domain.UserTypeUser)
	c := f.openCase(t, owner.ID)
	msg, _, err := f.svc.CreateMessage(ctx, MessageCreateInput{CaseID: c.ID, SenderID: owner.ID, Content: "no files"})
	require.NoError(t, err)

	list, err := f.svc.ListAttachments(ctx, c.ID, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.ListAttachments(ctx, c.ID, 99)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.svc.ListAttachments(ctx, 99, msg.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}
