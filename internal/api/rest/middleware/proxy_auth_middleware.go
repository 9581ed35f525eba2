package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colabah/style-dna-service/config"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// LoggedInCustomerKey is the context key holding the storefront customer id
// the app proxy forwards for logged-in visitors.
const LoggedInCustomerKey = "logged_in_customer_id"

// RequireShopContext rejects requests when no Admin API context is configured
// for the shop (app not installed, or the offline token was lost).
func RequireShopContext(cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Shopify.Installed() {
			log.Error("No offline session found for shop. App may need to be reinstalled.")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "App is not installed on this store. Please install the app first.",
			})
			return
		}
		c.Next()
	}
}

// ProxyAuthMiddleware authenticates app proxy requests: the shop must be
// installed and the Shopify-computed signature query parameter must match.
// It also exposes logged_in_customer_id to the handlers.
func ProxyAuthMiddleware(cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	requireShop := RequireShopContext(cfg, log)

	return func(c *gin.Context) {
		requireShop(c)
		if c.IsAborted() {
			return
		}

		if cfg.Workflow.VerifyProxySignature {
			if !VerifyProxySignature(c.Request.URL.Query(), cfg.Shopify.APISecret) {
				log.Warn("Rejected proxy request with bad signature from %s", c.ClientIP())
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error":   "Invalid signature",
				})
				return
			}
		}

		c.Set(LoggedInCustomerKey, c.Query(LoggedInCustomerKey))
		c.Next()
	}
}

// VerifyProxySignature checks the HMAC-SHA256 signature Shopify appends to
// app proxy requests: drop the signature param, render each key as
// key=v1,v2..., sort, concatenate without separators, HMAC with the app
// secret, hex-compare.
func VerifyProxySignature(query url.Values, secret string) bool {
	signature := query.Get("signature")
	if signature == "" || secret == "" {
		return false
	}

	pairs := make([]string, 0, len(query))
	for key, values := range query {
		if key == "signature" {
			continue
		}
		pairs = append(pairs, key+"="+strings.Join(values, ","))
	}
	sort.Strings(pairs)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
