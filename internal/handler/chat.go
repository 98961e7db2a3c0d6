package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/service"
)

// Conversations is the assistant facade as seen by the HTTP layer
type Conversations interface {
	StartConversation() string
	Handle(ctx context.Context, conversationID, text string) *model.AssistantReply
	Reset(conversationID string) error
	CurrentFilter(conversationID string) (*model.FilterResponse, error)
}

var _ Conversations = (*service.Assistant)(nil)

// ChatHandler handles conversation HTTP requests
type ChatHandler struct {
	assistant Conversations
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant Conversations) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Create handles POST /api/v1/conversations
func (h *ChatHandler) Create(c *gin.Context) {
	c.JSON(http.StatusCreated, model.ConversationResponse{
		ConversationID: h.assistant.StartConversation(),
	})
}

// Message handles POST /api/v1/conversations/:id/messages
func (h *ChatHandler) Message(c *gin.Context) {
	var req model.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text is empty"})
		return
	}

	reply := h.assistant.Handle(c.Request.Context(), c.Param("id"), text)
	c.JSON(http.StatusOK, reply)
}

// Reset handles DELETE /api/v1/conversations/:id
func (h *ChatHandler) Reset(c *gin.Context) {
	if err := h.assistant.Reset(c.Param("id")); err != nil {
		conversationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Filter handles GET /api/v1/conversations/:id/filter
func (h *ChatHandler) Filter(c *gin.Context) {
	resp, err := h.assistant.CurrentFilter(c.Param("id"))
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func conversationError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnknownConversation) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
}
