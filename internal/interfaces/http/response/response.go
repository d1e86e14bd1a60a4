package response

import (
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "pay-chain.backend/internal/domain/errors"
)

// Envelope is the uniform response shape for every endpoint. Data is
// omitted when there is no payload.
type Envelope struct {
	Timestamp time.Time   `json:"timestamp"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

// Success sends a success envelope
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Message:   message,
		Data:      data,
	})
}

// Error maps the error to its HTTP shape and sends an error envelope.
// Non-domain errors surface as 500 without leaking internals.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.JSON(appErr.Status, Envelope{
		Timestamp: time.Now().UTC(),
		Status:    appErr.Status,
		Message:   appErr.Message,
		Data:      gin.H{"code": appErr.Code},
	})
}

// ErrorWithStatus sends an error envelope with an explicit status and code
func ErrorWithStatus(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Message:   message,
		Data:      gin.H{"code": code},
	})
}
