package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware lets the static marketing site post to the API from another origin.
// Production origins are always allowed; localhost only outside production.
func CORSMiddleware(frontendURL string, isProduction bool) gin.HandlerFunc {
	productionOrigins := map[string]bool{
		"https://www.ratioanalytics.com": true,
		"https://ratioanalytics.com":     true,
	}
	if frontendURL != "" {
		productionOrigins[strings.TrimRight(frontendURL, "/")] = true
	}

	devOrigins := map[string]bool{
		"http://localhost:3000": true,
		"http://127.0.0.1:3000": true,
		"http://localhost:8080": true,
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		isAllowed := origin == "" || productionOrigins[origin] || (!isProduction && devOrigins[origin])

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, X-CSRF-Token, X-Request-ID, Origin")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400") // 24 hours
		}

		// Vary header to ensure caches differentiate by Origin
		c.Header("Vary", "Origin")

		if c.Request.Method == "OPTIONS" {
			if isAllowed {
				c.AbortWithStatus(204)
			} else {
				c.AbortWithStatus(403)
			}
			return
		}

		c.Next()
	}
}
