package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
)

func (h *Handler) SendMessage(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req storage.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.Store.SendMessage(c.Request.Context(), sess, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) Inbox(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	msgs, err := h.Store.Inbox(c.Request.Context(), sess.Role, sess.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(msgs))
}

func (h *Handler) Conversation(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	msgs, err := h.Store.Conversation(c.Request.Context(), sess.ID, c.Param("otherId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(msgs))
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.Store.MarkRead(c.Request.Context(), sess, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}
