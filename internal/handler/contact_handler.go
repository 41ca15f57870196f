package handler

import (
	"fmt"
	"net/http"

	"busyboard/internal/mailer"

	"github.com/gin-gonic/gin"
)

// ContactHandler forwards contact-form submissions to the feedback
// mailbox.
type ContactHandler struct {
	mail mailer.Mailer
	to   string
}

func NewContactHandler(mail mailer.Mailer, to string) *ContactHandler {
	return &ContactHandler{
		mail: mail,
		to:   to,
	}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Submit validates the form and sends the feedback mail. Delivery
// failures surface as a 500; there is no retry.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	body := fmt.Sprintf("Name: %s\nPhone: %s\nEmail: %s\n\nMessage:\n%s",
		req.Name, req.Phone, req.Email, req.Message)

	if err := h.mail.Send(h.to, "New Feedback", body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thanks for contacting us!"})
}
