package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler recovers panics and turns handler errors into a JSON error body
func ErrorHandler(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Printf("Error: request_id=%s panic: %v", GetRequestID(c), err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     "Internal Server Error",
					RequestID: GetRequestID(c),
				})
			}
		}()

		c.Next()

		// Handlers that recorded an error without writing a body
		if len(c.Errors) > 0 && !c.Writer.Written() {
			status := c.Writer.Status()
			if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
			logger.Printf("Error: request_id=%s %v", GetRequestID(c), c.Errors.Last())
			c.JSON(status, ErrorResponse{
				Error:     c.Errors.Last().Error(),
				RequestID: GetRequestID(c),
			})
		}
	}
}
