package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minichat/chat-server/internal/chat"
	"github.com/minichat/chat-server/internal/models"
)

type Handler struct {
	chatService   *chat.Service
	conversations *chat.ConversationService
	rules         *chat.RuleService
	logger        *zap.Logger
}

func NewHandler(chatService *chat.Service, conversations *chat.ConversationService, rules *chat.RuleService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatService:   chatService,
		conversations: conversations,
		rules:         rules,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	chatGroup := router.Group("/api/chat")
	chatGroup.POST("/message", h.handleSendMessage)

	convGroup := chatGroup.Group("/conversations")
	convGroup.GET("", h.handleListConversations)
	convGroup.POST("", h.handleCreateConversation)
	convGroup.GET("/:id", h.handleGetConversation)
	convGroup.DELETE("/:id", h.handleDeleteConversation)
	convGroup.GET("/:id/messages", h.handleListMessages)

	ruleGroup := router.Group("/api/keyword-responses")
	ruleGroup.GET("", h.handleListRules)
	ruleGroup.POST("", h.handleCreateRule)
	ruleGroup.GET("/:id", h.handleGetRule)
	ruleGroup.PUT("/:id", h.handleUpdateRule)
	ruleGroup.DELETE("/:id", h.handleDeleteRule)
	ruleGroup.PATCH("/:id/toggle", h.handleToggleRule)
}

func (h *Handler) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	result, err := h.chatService.ProcessMessage(c.Request.Context(), req.Content, req.ConversationID)
	if err != nil {
		h.writeServiceError(c, err, "Failed to process message")
		return
	}

	writeSuccess(c, http.StatusOK, "Message processed successfully", result)
}

func (h *Handler) handleListConversations(c *gin.Context) {
	conversations, err := h.conversations.List(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err, "Failed to list conversations")
		return
	}

	writeSuccess(c, http.StatusOK, "Conversations retrieved successfully", conversations)
}

func (h *Handler) handleCreateConversation(c *gin.Context) {
	conversation, err := h.conversations.Create(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err, "Failed to create conversation")
		return
	}

	writeSuccess(c, http.StatusCreated, "Conversation created successfully", conversation)
}

func (h *Handler) handleGetConversation(c *gin.Context) {
	conversation, err := h.conversations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err, "Failed to get conversation")
		return
	}

	writeSuccess(c, http.StatusOK, "Conversation retrieved successfully", conversation)
}

func (h *Handler) handleDeleteConversation(c *gin.Context) {
	if err := h.conversations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Failed to delete conversation")
		return
	}

	writeSuccess(c, http.StatusOK, "Conversation deleted successfully", nil)
}

func (h *Handler) handleListMessages(c *gin.Context) {
	messages, err := h.conversations.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err, "Failed to list messages")
		return
	}

	writeSuccess(c, http.StatusOK, "Messages retrieved successfully", messages)
}

func (h *Handler) handleListRules(c *gin.Context) {
	activeOnly := c.Query("activeOnly") == "true"
	rules, err := h.rules.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.writeServiceError(c, err, "Failed to list keyword responses")
		return
	}

	writeSuccess(c, http.StatusOK, "Keyword responses retrieved successfully", rules)
}

func (h *Handler) handleGetRule(c *gin.Context) {
	rule, err := h.rules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err, "Failed to get keyword response")
		return
	}

	writeSuccess(c, http.StatusOK, "Keyword response retrieved successfully", rule)
}

func (h *Handler) handleCreateRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	rule, err := h.rules.Create(c.Request.Context(), chat.CreateRuleInput{
		Keywords: req.Keywords,
		Response: req.Response,
		Priority: req.priority(),
	})
	if err != nil {
		h.writeServiceError(c, err, "Failed to create keyword response")
		return
	}

	writeSuccess(c, http.StatusCreated, "Keyword response created successfully", rule)
}

func (h *Handler) handleUpdateRule(c *gin.Context) {
	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	rule, err := h.rules.Update(c.Request.Context(), c.Param("id"), models.KeywordRuleUpdate{
		Keywords: req.Keywords,
		Response: req.Response,
		Priority: req.Priority,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(c, err, "Failed to update keyword response")
		return
	}

	writeSuccess(c, http.StatusOK, "Keyword response updated successfully", rule)
}

func (h *Handler) handleDeleteRule(c *gin.Context) {
	if err := h.rules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Failed to delete keyword response")
		return
	}

	writeSuccess(c, http.StatusOK, "Keyword response deleted successfully", nil)
}

func (h *Handler) handleToggleRule(c *gin.Context) {
	rule, err := h.rules.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err, "Failed to toggle keyword response")
		return
	}

	writeSuccess(c, http.StatusOK, "Keyword response status toggled successfully", rule)
}

// writeServiceError maps service errors onto the response envelope: domain
// not-found and validation errors keep their message, everything else becomes
// a generic 500 with the cause logged.
func (h *Handler) writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrConversationNotFound), errors.Is(err, models.ErrRuleNotFound):
		writeError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, chat.ErrKeywordsRequired), errors.Is(err, chat.ErrResponseRequired):
		writeError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		writeError(c, http.StatusInternalServerError, fallback, nil)
	}
}

func writeSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func writeError(c *gin.Context, status int, message string, errs []FieldError) {
	body := gin.H{
		"status":  "error",
		"message": message,
	}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	c.JSON(status, body)
}
