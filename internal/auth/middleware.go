package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Require rejects requests without a valid admin session cookie.
func (s *Sessions) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || s.Verify(tokenStr) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Reikia prisijungti"})
			return
		}
		c.Next()
	}
}

func (s *Sessions) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkama užklausa"})
			return
		}
		token, err := s.Login(req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Neteisingas slaptažodis"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko prisijungti"})
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (s *Sessions) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (s *Sessions) SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(CookieName)
		c.JSON(http.StatusOK, gin.H{"admin": s.Verify(tokenStr) == nil})
	}
}
