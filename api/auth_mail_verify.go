package api

import (
	"errors"
	"net/http"

	"bitwise74/zeropass/security"
	"bitwise74/zeropass/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMailVerify redeems a login link secret. A valid redemption
// creates the user on first sight and answers with a bearer token.
func (a *API) AuthMailVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	secret := c.Query("token")
	if secret == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	email, err := a.Creds.RedeemMailToken(secret)
	if err != nil {
		if errors.Is(err, security.ErrTokenNotFound) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "token_not_found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to redeem mail token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := a.Identity.Resolve(service.Contact{Email: email})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to resolve user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token, err := a.Sessions.Issue(user.ID, email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}
