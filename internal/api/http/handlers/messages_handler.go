package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/api/dto"
	"github.com/spec-kit/case-service/internal/service"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// MessagesHandler manages messages and attachments on a case.
type MessagesHandler struct {
	service *service.CaseService
	logger  *zap.Logger
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(caseService *service.CaseService, logger *zap.Logger) *MessagesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagesHandler{service: caseService, logger: logger}
}

// CreateMessage POST /cases/:id/messages.
func (h *MessagesHandler) CreateMessage(c *fiber.Ctx) error {
	caseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, attachment, err := h.service.CreateMessage(c.UserContext(), service.MessageCreateInput{
		CaseID:     caseID,
		SenderID:   req.SenderID,
		Content:    req.Content,
		Attachment: req.Attachment.ToAttachmentInput(),
	})
	if err != nil {
		return h.asBadRequest(c, err)
	}

	resp := dto.MessageCreatedResponse{MessageResponse: dto.NewMessageResponse(msg)}
	if attachment != nil {
		stored := dto.NewAttachmentResponse(attachment)
		resp.StoredAttachment = &stored
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// ListMessages GET /cases/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	caseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	msgs, err := h.service.ListMessages(c.UserContext(), caseID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageListResponse(msgs)})
}

// EditMessage POST /cases/:id/messages/:message_id/edit.
func (h *MessagesHandler) EditMessage(c *fiber.Ctx) error {
	caseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	messageID, err := paramID(c, "message_id")
	if err != nil {
		return err
	}
	var req dto.EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.service.EditMessage(c.UserContext(), caseID, messageID, req.SenderID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}

// ListAttachments GET /cases/:id/messages/:message_id/attachments.
func (h *MessagesHandler) ListAttachments(c *fiber.Ctx) error {
	caseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	messageID, err := paramID(c, "message_id")
	if err != nil {
		return err
	}
	attachments, err := h.service.ListAttachments(c.UserContext(), caseID, messageID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAttachmentListResponse(attachments)})
}

// asBadRequest reports unclassified failures during message creation as
// invalid input, keeping classified errors as they are. The underlying error
// is logged and not returned to the client.
func (h *MessagesHandler) asBadRequest(c *fiber.Ctx, err error) error {
	if apperrors.ToDomainError(err).Code != apperrors.CodeInternal {
		return err
	}
	h.logger.Warn("message creation failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return apperrors.NewValidationError("message could not be created", nil)
}
