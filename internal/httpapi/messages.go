package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/mail"
	"github.com/campus-union/voicebox/internal/models"
	"github.com/campus-union/voicebox/internal/render"
	"github.com/campus-union/voicebox/internal/store"
)

// MessageHandler handles public submission and the admin message endpoints.
type MessageHandler struct {
	messages  *store.MessageStore
	analytics *store.AnalyticsStore
	notifier  *mail.Notifier
	renderer  *render.CardRenderer
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *store.MessageStore, analytics *store.AnalyticsStore, notifier *mail.Notifier, renderer *render.CardRenderer) *MessageHandler {
	return &MessageHandler{messages: messages, analytics: analytics, notifier: notifier, renderer: renderer}
}

// submitRequest defines the public submission body.
type submitRequest struct {
	Content string `json:"content"`
}

// Submit accepts an anonymous message, sanitizes it and persists it.
func (h *MessageHandler) Submit(c *gin.Context) {
	var body submitRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondValidation(c, FieldError{Field: "content", Message: "Content must be a string"})
		return
	}

	msg, errSubmit := h.messages.Submit(c.Request.Context(), body.Content)
	if errSubmit != nil {
		switch {
		case errors.Is(errSubmit, store.ErrContentLength):
			respondValidation(c, FieldError{
				Field:   "content",
				Message: fmt.Sprintf("Content must be between %d and %d characters", store.MinContentLength, store.MaxContentLength),
			})
		case errors.Is(errSubmit, store.ErrContentUnsafe):
			respondValidation(c, FieldError{
				Field:   "content",
				Message: "Content contains too little text after removing unsafe markup",
			})
		default:
			log.WithError(errSubmit).Error("failed to store message")
			respondError(c, http.StatusInternalServerError, "Failed to submit message")
		}
		return
	}

	if errTrack := h.analytics.IncrementToday(c.Request.Context(), models.MetricMessageSubmissions); errTrack != nil {
		log.WithError(errTrack).Warn("failed to track message submission")
	}
	h.notifier.NotifyNewMessage(msg.ID, msg.SanitizedContent)

	respondCreated(c, "Message submitted successfully", gin.H{
		"id":          msg.ID,
		"submittedAt": msg.CreatedAt,
	})
}

// List returns a page of messages, newest first.
func (h *MessageHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	msgs, pagination, errList := h.messages.List(c.Request.Context(), page, limit)
	if errList != nil {
		log.WithError(errList).Error("failed to list messages")
		respondError(c, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	respondOK(c, gin.H{
		"messages":   msgs,
		"pagination": pagination,
	})
}

// Stats returns dashboard aggregates over the message table.
func (h *MessageHandler) Stats(c *gin.Context) {
	stats, errStats := h.messages.Stats(c.Request.Context())
	if errStats != nil {
		log.WithError(errStats).Error("failed to compute message stats")
		respondError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	respondOK(c, stats)
}

// Get returns a single message by id.
func (h *MessageHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	msg, errGet := h.messages.Get(c.Request.Context(), id)
	if errGet != nil {
		if errors.Is(errGet, store.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "Message not found")
			return
		}
		log.WithError(errGet).Error("failed to load message")
		respondError(c, http.StatusInternalServerError, "Failed to load message")
		return
	}
	respondOK(c, msg)
}

// reviewRequest defines the review toggle body.
type reviewRequest struct {
	IsReviewed *bool `json:"isReviewed"`
}

// Review marks a message as reviewed or clears the flag.
func (h *MessageHandler) Review(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body reviewRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.IsReviewed == nil {
		respondValidation(c, FieldError{Field: "isReviewed", Message: "isReviewed must be a boolean"})
		return
	}

	msg, errSet := h.messages.SetReviewed(c.Request.Context(), id, *body.IsReviewed)
	if errSet != nil {
		if errors.Is(errSet, store.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "Message not found")
			return
		}
		log.WithError(errSet).Error("failed to update message review state")
		respondError(c, http.StatusInternalServerError, "Failed to update message")
		return
	}
	respondUpdated(c, "Message updated successfully", msg)
}

// Delete removes a message permanently.
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if errDelete := h.messages.Delete(c.Request.Context(), id); errDelete != nil {
		if errors.Is(errDelete, store.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "Message not found")
			return
		}
		log.WithError(errDelete).Error("failed to delete message")
		respondError(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	respondMessage(c, "Message deleted successfully")
}

// Download renders the message as a PNG card attachment.
func (h *MessageHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	msg, errGet := h.messages.Get(c.Request.Context(), id)
	if errGet != nil {
		if errors.Is(errGet, store.ErrMessageNotFound) {
			respondError(c, http.StatusNotFound, "Message not found")
			return
		}
		log.WithError(errGet).Error("failed to load message")
		respondError(c, http.StatusInternalServerError, "Failed to load message")
		return
	}

	png, errRender := h.renderer.Render(c.Request.Context(), msg.SanitizedContent, msg.CreatedAt)
	if errRender != nil {
		log.WithError(errRender).Error("failed to render message card")
		respondError(c, http.StatusInternalServerError, "Failed to render message image")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="message-%d.png"`, msg.ID))
	c.Data(http.StatusOK, "image/png", png)
}

func parseID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || id == 0 {
		respondValidation(c, FieldError{Field: "id", Message: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
