package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"idcore/api/internal/apperr"
	"idcore/api/internal/domain"
	"idcore/api/internal/service"
)

const (
	// ContextSession holds the resolved *domain.Session.
	ContextSession = "session"
	// CsrfHeader carries the CSRF token on state-changing web requests.
	CsrfHeader = "X-CSRF-Token"
)

// SessionAuth guards the web surface. It resolves the session cookie,
// enforces the CSRF header on state-changing methods, and slides the
// session expiry on activity.
func SessionAuth(sessions *service.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_session"})
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": userMessage(err)})
			return
		}

		if stateChanging(c.Request.Method) {
			if err := sessions.VerifyCsrf(session, c.GetHeader(CsrfHeader)); err != nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": userMessage(err)})
				return
			}
		}

		sessions.Slide(c.Request.Context(), session)

		c.Set(ContextSession, session)
		c.Set(ContextUserID, session.UserID)

		c.Next()
	}
}

// SessionFromContext returns the session stored by SessionAuth.
func SessionFromContext(c *gin.Context) (*domain.Session, bool) {
	value, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := value.(*domain.Session)
	return session, ok
}

func stateChanging(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func userMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	return "An internal error occurred"
}
