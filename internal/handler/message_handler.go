package handler

import (
	"net/http"

	"pairchat/internal/domain/conversation"
	"pairchat/internal/services"
	"pairchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles message, read-receipt and typing endpoints.
type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Update handles PUT /api/message. The body may carry a message to
// append, a read-receipt update, or both; at least one is required.
func (h *MessageHandler) Update(c *gin.Context) {
	var req httpdto.MessageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if req.Message == nil && req.UpdateRead == nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("message or updateRead is required", "INVALID_REQUEST"))
		return
	}

	var sent *httpdto.MessageDTO

	if req.Message != nil {
		if !requireIdentity(c, req.Message.Sender) {
			return
		}
		m, err := h.service.Send(c.Request.Context(), req.ConversationID, req.Message.Sender, req.Message.Body)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		dto := toMessageDTO(m)
		sent = &dto
	}

	if req.UpdateRead != nil {
		if !requireIdentity(c, req.UpdateRead.Reader) {
			return
		}
		if err := h.service.MarkRead(c.Request.Context(), req.ConversationID, req.UpdateRead.Reader); err != nil {
			writeServiceError(c, err)
			return
		}
	}

	if sent != nil {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(*sent))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "read receipts updated"}))
}

// Typing handles PUT /api/typing.
func (h *MessageHandler) Typing(c *gin.Context) {
	var req httpdto.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if !requireIdentity(c, req.User) {
		return
	}

	if err := h.service.SetTyping(c.Request.Context(), req.ConversationID, req.User, *req.Typing); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "typing status updated"}))
}

// GetConversation handles GET /api/conversations/:conversationId.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	username, ok := services.UsernameFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conv, err := h.service.Get(c.Request.Context(), c.Param("conversationId"), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toConversationDTO(conv)))
}

// ListConversations handles GET /api/:user/conversations.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	username := c.Param("user")
	if !requireIdentity(c, username) {
		return
	}

	conversations, err := h.service.ListForUser(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	dtos := make([]httpdto.ConversationDTO, len(conversations))
	for i, conv := range conversations {
		dtos[i] = toConversationDTO(conv)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ConversationsResponse{Conversations: dtos}))
}

func toMessageDTO(m conversation.Message) httpdto.MessageDTO {
	return httpdto.MessageDTO{
		Sender:    m.Sender,
		Body:      m.Body,
		Timestamp: m.Timestamp,
		ReadBy:    m.ReadBy,
	}
}

func toConversationDTO(conv conversation.Conversation) httpdto.ConversationDTO {
	messages := make([]httpdto.MessageDTO, len(conv.Messages))
	for i, m := range conv.Messages {
		messages[i] = toMessageDTO(m)
	}
	return httpdto.ConversationDTO{
		ConversationID: conv.ID,
		Participants:   conv.Participants,
		Messages:       messages,
		Typing:         conv.Typing,
		CreatedAt:      conv.CreatedAt,
	}
}
