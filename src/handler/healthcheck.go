package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthCheck reports liveness for deployment platforms.
func HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "PyFast API is running"})
}
