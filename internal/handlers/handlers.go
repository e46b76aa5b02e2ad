package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"idcore/api/internal/apperr"
	"idcore/api/internal/cache"
	"idcore/api/internal/config"
	"idcore/api/internal/middleware"
	"idcore/api/internal/repository"
	"idcore/api/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	users    *service.UserService
	sessions *service.SessionService
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cacheClient *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewPostgresUserRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db, log)
	revocations := cache.NewRevocationCache(cacheClient)

	auth := service.NewAuthService(userRepo, sessionRepo, tokenRepo, revocations, &cfg.Auth, log)
	users := service.NewUserService(userRepo, log)
	sessions := service.NewSessionService(sessionRepo, &cfg.Auth, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		users:    users,
		sessions: sessions,
		db:       db,
		cache:    cacheClient,
	}
}

func (h HandlerSet) Mount(engine *gin.Engine) {
	api := engine.Group("/api")
	api.GET("/healthz", h.Health)

	v1 := api.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.LoginAPI)
		auth.POST("/refresh", h.Refresh)

		protected := v1.Group("/auth")
		protected.Use(middleware.BearerAuth(h.auth))
		protected.POST("/logout", h.LogoutAPI)
		protected.GET("/me", h.GetProfile)

		users := v1.Group("/users")
		users.Use(middleware.BearerAuth(h.auth))
		users.GET("/me", h.GetProfile)
		users.PATCH("/me", h.UpdateProfile)
		users.PUT("/me/password", h.ChangePassword)
		users.POST("/me/verify-email", h.VerifyEmail)
		// Deactivation revokes every credential, so there is no
		// self-service reactivate route; UserService.Reactivate is
		// reserved for administrative tooling.
		users.POST("/me/deactivate", h.Deactivate)
	}

	web := engine.Group("/web/auth")
	web.POST("/login", h.LoginWeb)

	webProtected := engine.Group("/web/auth")
	webProtected.Use(middleware.SessionAuth(h.sessions, h.cfg.Auth.SessionCookie))
	webProtected.GET("/session", h.CurrentSession)
	webProtected.POST("/logout", h.LogoutWeb)
	webProtected.POST("/logout-all", h.LogoutAll)
}

// respondError maps the application error taxonomy onto HTTP status
// codes. Errors from outside the taxonomy classify as internal, and
// internal detail is logged here so only a generic message leaves the
// process.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuthentication:
		status = http.StatusUnauthorized
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInternal:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	}

	message := "An internal error occurred"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.UserMessage()
	}

	c.JSON(status, gin.H{"error": message})
}
