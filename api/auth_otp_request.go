package api

import (
	"net/http"

	"bitwise74/zeropass/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type otpRequestBody struct {
	Phone string `json:"phone"`
}

// AuthOtpRequest issues a one-time code for a phone number. A new
// code replaces any live one for the same phone.
func (a *API) AuthOtpRequest(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data otpRequestBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PhoneValidator(data.Phone); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "validation_failed",
			"requestID": requestID,
		})
		return
	}

	o, err := a.Creds.IssueOTP(data.Phone)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "internal_server_error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Notify.SendLoginCode(o.Phone, o.Code); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "upstream_failure",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send login code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Code sent",
	})
}
