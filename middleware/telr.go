package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/config"
)

var telrSignedFields = []string{
	"tran_store", "tran_type", "tran_class", "tran_test", "tran_ref",
	"tran_prevref", "tran_firstref", "tran_order", "tran_currency",
	"tran_amount", "tran_cartid", "tran_desc", "tran_status",
	"tran_authcode", "tran_authmessage",
}

// TelrSignature is the SHA1 of the secret and the signed fields joined by ':'.
func TelrSignature(secret string, form url.Values) string {
	sum := telrSum(secret, form)
	return hex.EncodeToString(sum[:])
}

func telrSum(secret string, form url.Values) [sha1.Size]byte {
	parts := []string{secret}
	for _, f := range telrSignedFields {
		parts = append(parts, strings.TrimSpace(form.Get(f)))
	}
	return sha1.Sum([]byte(strings.Join(parts, ":")))
}

// TelrWebhookAuth verifies the tran_check signature of a Telr callback.
// Verification is skipped in sandbox and dev mode.
func TelrWebhookAuth(cfg config.Telr) gin.HandlerFunc {
	skip := cfg.Mode == "sandbox" || cfg.Mode == "dev"

	return func(c *gin.Context) {
		if skip {
			log.Debug("telr sandbox mode, skipping webhook signature check")
			c.Next()
			return
		}
		if cfg.WebhookSecret == "" {
			apperr.Respond(c, apperr.Forbidden("webhook verification is not configured"))
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			apperr.Respond(c, apperr.BadRequest("failed to parse form for signature verification"))
			return
		}

		provided := c.PostForm("tran_check")
		if provided == "" {
			apperr.Respond(c, apperr.Forbidden("missing tran_check signature"))
			return
		}
		want := telrSum(cfg.WebhookSecret, c.Request.PostForm)
		got, err := hex.DecodeString(provided)
		if err != nil || !hmac.Equal(want[:], got) {
			log.WithField("tran_ref", c.PostForm("tran_ref")).Warn("telr webhook signature mismatch")
			apperr.Respond(c, apperr.Forbidden("invalid webhook signature"))
			return
		}
		c.Next()
	}
}
