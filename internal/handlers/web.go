package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"idcore/api/internal/middleware"
	"idcore/api/internal/service"
)

// LoginWeb authenticates and establishes the cookie session. The CSRF
// token rides back in the body so the page can attach it as a header
// on subsequent state-changing requests.
func (h HandlerSet) LoginWeb(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.LoginWeb(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.ID, int(h.cfg.Auth.SessionTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"user":       result.User,
		"csrf_token": result.Session.CsrfToken.String(),
	})
}

func (h HandlerSet) CurrentSession(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"id":         session.ID,
			"user_id":    session.UserID,
			"expires_at": session.ExpiresAt,
		},
	})
}

func (h HandlerSet) LogoutWeb(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_session"})
		return
	}

	if err := h.auth.LogoutWeb(c.Request.Context(), session.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// LogoutAll terminates the web session and revokes every API token.
func (h HandlerSet) LogoutAll(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_session"})
		return
	}

	if err := h.auth.LogoutAll(c.Request.Context(), session.UserID); err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cfg.Auth.SessionCookie,
		value,
		maxAge,
		"/",
		"",
		h.cfg.Auth.SecureCookies,
		true, // HttpOnly
	)
}
