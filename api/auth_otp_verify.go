package api

import (
	"errors"
	"net/http"

	"bitwise74/zeropass/security"
	"bitwise74/zeropass/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type otpVerifyBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// AuthOtpVerify redeems a one-time code. All failure causes answer
// with the same generic code_invalid.
func (a *API) AuthOtpVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data otpVerifyBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	if data.Phone == "" || data.Code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	phone, err := a.Creds.RedeemOTP(data.Phone, data.Code)
	if err != nil {
		if errors.Is(err, security.ErrCodeInvalid) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "code_invalid",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to redeem code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := a.Identity.Resolve(service.Contact{Phone: phone})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to resolve user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token, err := a.Sessions.Issue(user.ID, phone)
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
