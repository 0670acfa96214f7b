package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/service/messages"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
)

// MessageHandlers provides HTTP handlers for message endpoints.
type MessageHandlers struct {
	messages *messages.Service
	log      *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(msgs *messages.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		messages: msgs,
		log:      logger,
	}
}

// MessageRequest represents the create message request body.
type MessageRequest struct {
	PostedBy        int64  `json:"postedBy"`
	MessageText     string `json:"messageText"`
	TimePostedEpoch int64  `json:"timePostedEpoch"`
}

// UpdateMessageRequest represents the patch message request body.
type UpdateMessageRequest struct {
	MessageText string `json:"messageText"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	MessageID       int64  `json:"messageId"`
	PostedBy        int64  `json:"postedBy"`
	MessageText     string `json:"messageText"`
	TimePostedEpoch int64  `json:"timePostedEpoch"`
}

func messageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		MessageID:       m.ID,
		PostedBy:        m.PostedBy,
		MessageText:     m.Text,
		TimePostedEpoch: m.TimePostedEpoch,
	}
}

func messageListResponse(msgs []*store.Message) []MessageResponse {
	response := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		response = append(response, messageResponse(m))
	}
	return response
}

// CreateMessage handles posting a message.
// POST /messages
func (h *MessageHandlers) CreateMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create message request")
		c.Status(http.StatusBadRequest)
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), &store.Message{
		PostedBy:        req.PostedBy,
		Text:            req.MessageText,
		TimePostedEpoch: req.TimePostedEpoch,
	})
	if err != nil {
		if errors.Is(err, messages.ErrInvalidMessage) || errors.Is(err, messages.ErrAccountNotFound) {
			h.log.Debug().Err(err).Int64("account_id", req.PostedBy).Msg("rejected message")
			c.Status(http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Int64("account_id", req.PostedBy).Msg("failed to create message")
		c.Status(http.StatusInternalServerError)
		return
	}

	h.log.Info().Int64("message_id", msg.ID).Int64("account_id", msg.PostedBy).Msg("message created")
	c.JSON(http.StatusOK, messageResponse(msg))
}

// ListMessages handles listing every message.
// GET /messages
func (h *MessageHandlers) ListMessages(c *gin.Context) {
	msgs, err := h.messages.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, messageListResponse(msgs))
}

// GetMessage handles fetching a single message. A missing message is
// answered with 200 and an empty body.
// GET /messages/:messageId
func (h *MessageHandlers) GetMessage(c *gin.Context) {
	id, ok := h.idParam(c, "messageId")
	if !ok {
		return
	}

	msg, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, messages.ErrMessageNotFound) {
			c.Status(http.StatusOK)
			return
		}
		h.log.Error().Err(err).Int64("message_id", id).Msg("failed to get message")
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, messageResponse(msg))
}

// DeleteMessage handles deleting a message. The body is 1 when a message was
// removed and empty when there was nothing to remove.
// DELETE /messages/:messageId
func (h *MessageHandlers) DeleteMessage(c *gin.Context) {
	id, ok := h.idParam(c, "messageId")
	if !ok {
		return
	}

	rows, err := h.messages.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, messages.ErrMessageNotFound) {
			c.Status(http.StatusOK)
			return
		}
		h.log.Error().Err(err).Int64("message_id", id).Msg("failed to delete message")
		c.Status(http.StatusInternalServerError)
		return
	}

	h.log.Info().Int64("message_id", id).Msg("message deleted")
	c.JSON(http.StatusOK, rows)
}

// UpdateMessage handles replacing a message's text.
// PATCH /messages/:messageId
func (h *MessageHandlers) UpdateMessage(c *gin.Context) {
	id, ok := h.idParam(c, "messageId")
	if !ok {
		return
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update message request")
		c.Status(http.StatusBadRequest)
		return
	}

	rows, err := h.messages.UpdateText(c.Request.Context(), id, req.MessageText)
	if err != nil {
		if errors.Is(err, messages.ErrInvalidMessage) || errors.Is(err, messages.ErrMessageNotFound) {
			h.log.Debug().Err(err).Int64("message_id", id).Msg("rejected message update")
			c.Status(http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Int64("message_id", id).Msg("failed to update message")
		c.Status(http.StatusInternalServerError)
		return
	}

	h.log.Info().Int64("message_id", id).Msg("message updated")
	c.JSON(http.StatusOK, rows)
}

// ListAccountMessages handles listing the messages of one account.
// GET /accounts/:accountId/messages
func (h *MessageHandlers) ListAccountMessages(c *gin.Context) {
	accountID, ok := h.idParam(c, "accountId")
	if !ok {
		return
	}

	msgs, err := h.messages.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", accountID).Msg("failed to list account messages")
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, messageListResponse(msgs))
}

// idParam parses a numeric path parameter, answering 400 when it is malformed.
func (h *MessageHandlers) idParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.log.Debug().Err(err).Str(name, raw).Msg("invalid path id")
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
