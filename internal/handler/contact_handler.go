package handler

import (
	"net/http"

	"pairchat/internal/services"
	"pairchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ContactHandler handles the contact handshake endpoints.
type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// SendRequest handles POST /api/:user/contacts/requests/send/:contact.
func (h *ContactHandler) SendRequest(c *gin.Context) {
	requester := c.Param("user")
	target := c.Param("contact")
	if !requireIdentity(c, requester) {
		return
	}

	if err := h.service.SendRequest(c.Request.Context(), requester, target); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "contact request sent"}))
}

// AcceptRequest handles POST /api/:user/contacts/requests/accept/:contact.
// Responds 201 when this acceptance created the conversation and 200
// when it already existed (retried accepts are idempotent).
func (h *ContactHandler) AcceptRequest(c *gin.Context) {
	username := c.Param("user")
	contact := c.Param("contact")
	if !requireIdentity(c, username) {
		return
	}

	res, err := h.service.Accept(c.Request.Context(), username, contact)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, httpdto.NewSuccessResponse(httpdto.AcceptResponse{
		Message:        "contact request accepted",
		ConversationID: res.Conversation.ID,
		Created:        res.Created,
	}))
}

// DeclineRequest handles POST /api/:user/contacts/requests/decline/:contact.
func (h *ContactHandler) DeclineRequest(c *gin.Context) {
	username := c.Param("user")
	contact := c.Param("contact")
	if !requireIdentity(c, username) {
		return
	}

	if err := h.service.Decline(c.Request.Context(), username, contact); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "contact request declined"}))
}

// Contacts handles GET /api/:user/contacts.
func (h *ContactHandler) Contacts(c *gin.Context) {
	username := c.Param("user")
	if !requireIdentity(c, username) {
		return
	}

	contacts, err := h.service.Contacts(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ContactsResponse{Contacts: contacts}))
}

// PendingRequests handles GET /api/:user/contacts/pending-requests.
func (h *ContactHandler) PendingRequests(c *gin.Context) {
	username := c.Param("user")
	if !requireIdentity(c, username) {
		return
	}

	pending, err := h.service.PendingRequests(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PendingRequestsResponse{ContactRequests: pending}))
}

// SentRequests handles GET /api/:user/contacts/sent-requests.
func (h *ContactHandler) SentRequests(c *gin.Context) {
	username := c.Param("user")
	if !requireIdentity(c, username) {
		return
	}

	sent, err := h.service.SentRequests(c.Request.Context(), username)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SentRequestsResponse{SentRequests: sent}))
}
