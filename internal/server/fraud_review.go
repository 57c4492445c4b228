package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxNotificationBytes bounds an ENS batch body.
const maxNotificationBytes = 4 << 20

func (s *Server) HandleKountNotification(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.notifications.IngestNotification(c.Request.Context(), c.ClientIP(), payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "result": result})
}
