package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Messages shared by every handler. Error bodies never carry internal detail.
const (
	MsgUnauthorized   = "Unauthorized"
	MsgNotFound       = "Not found"
	MsgInvalidRequest = "Invalid request"
	MsgInternal       = "Internal server error"
)

// Success writes the {"data": ...} envelope.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"data": data,
	})
}

// Error writes the {"error": ...} envelope.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"error": msg,
	})
}

// ValidationError writes a 400 with the violated fields.
func ValidationError(c *gin.Context, details []FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   MsgInvalidRequest,
		"details": details,
	})
}
