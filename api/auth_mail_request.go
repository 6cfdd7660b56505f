package api

import (
	"fmt"
	"net/http"

	"bitwise74/zeropass/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type mailRequestBody struct {
	Email string `json:"email"`
}

// AuthMailRequest issues a mail token and emails the redemption link.
// The response never contains the secret.
func (a *API) AuthMailRequest(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data mailRequestBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	t, err := a.Creds.IssueMailToken(data.Email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue mail token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	link := fmt.Sprintf("%s/api/auth/mail/verify?token=%s", viper.GetString("host.base_url"), t.Secret)

	if err := a.Notify.SendLoginLink(data.Email, link); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "upstream_failure",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send login link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Link sent",
	})
}
