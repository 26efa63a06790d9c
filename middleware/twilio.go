package middleware

import (
	"net/http"
	"strings"

	"moveline/utils"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/client"
	"go.uber.org/zap"
)

// TwilioSignatureMiddleware rejects webhook requests whose X-Twilio-Signature
// does not match the public URL and form parameters. Validation is off when
// no auth token is configured (local development).
func TwilioSignatureMiddleware(authToken, baseURL string) gin.HandlerFunc {
	if authToken == "" {
		utils.GetLogger().Warn("TWILIO_AUTH_TOKEN not set, webhook signatures are not validated")
		return func(c *gin.Context) { c.Next() }
	}
	validator := client.NewRequestValidator(authToken)
	baseURL = strings.TrimRight(baseURL, "/")

	return func(c *gin.Context) {
		signature := c.GetHeader("X-Twilio-Signature")
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Code: "missing_signature", Message: "Missing Twilio signature"})
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{Code: "invalid_form", Message: "Malformed form body"})
			return
		}

		params := make(map[string]string, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
		url := baseURL + c.Request.URL.RequestURI()
		if !validator.Validate(url, params, signature) {
			zap.L().Warn("Invalid Twilio signature", zap.String("url", url), zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Code: "invalid_signature", Message: "Invalid Twilio signature"})
			return
		}
		c.Next()
	}
}
