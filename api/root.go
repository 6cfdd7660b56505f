package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers as long as the process is alive.
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate only runs after the JWT middleware, reaching it means the
// bearer token was good.
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
