package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"healthjournal/internal/analysis"
	"healthjournal/internal/config"
	"healthjournal/internal/logger"
	"healthjournal/internal/notify"
	"healthjournal/internal/store"
)

const ctxUserID = "authUserID"

type App struct {
	cfg          config.Config
	backend      store.Backend
	orchestrator *analysis.Orchestrator
	hub          *notify.Hub
	publisher    notify.Publisher
	log          *logger.Logger
	now          func() time.Time
}

type Deps struct {
	Backend      store.Backend
	Orchestrator *analysis.Orchestrator
	Hub          *notify.Hub
	// Publisher defaults to Hub. Set it to a RedisBus to fan out across
	// instances.
	Publisher notify.Publisher
	Log       *logger.Logger
	Now       func() time.Time
}

func New(cfg config.Config, deps Deps) *App {
	a := &App{
		cfg:          cfg,
		backend:      deps.Backend,
		orchestrator: deps.Orchestrator,
		hub:          deps.Hub,
		publisher:    deps.Publisher,
		log:          deps.Log,
		now:          deps.Now,
	}
	if a.log == nil {
		a.log = logger.Nop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.hub == nil {
		a.hub = notify.NewHub()
	}
	if a.publisher == nil {
		a.publisher = a.hub
	}
	if a.orchestrator == nil {
		a.orchestrator = analysis.NewOrchestrator(nil, nil, a.publisher, a.log, analysis.Options{Now: a.now})
	}
	a.log = a.log.With("component", "server")
	return a
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)

	api := router.Group(a.cfg.APIPrefix)
	api.Use(a.authMiddleware())

	api.GET("/entries", a.listEntries)
	api.POST("/entries", a.createEntry)
	api.DELETE("/entries/:id", a.deleteEntry)
	api.POST("/entries/extract", a.extractEntry)
	api.POST("/analysis", a.analyzeEntries)
	api.GET("/analysis/latest", a.latestAnalysis)
	api.GET("/analysis/history", a.analysisHistory)
	api.GET("/trends", a.getTrends)
	api.GET("/reports", a.getReport)
	api.GET("/reports/download", a.downloadReport)
	api.GET("/goals", a.getGoals)
	api.PUT("/goals", a.putGoals)
	api.POST("/habits/:id/check", a.checkHabit)
	api.GET("/nutrition", a.getNutrition)
	api.PUT("/nutrition", a.putNutrition)
	api.POST("/nutrition/meals", a.addMeal)
	api.GET("/stream", a.stream)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "healthjournal-api",
	})
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != a.cfg.JWTAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(c, http.StatusUnauthorized, "Invalid token payload")
			return
		}
		if a.cfg.JWTAudience != "" && !claimHasAudience(claims["aud"], a.cfg.JWTAudience) {
			writeError(c, http.StatusUnauthorized, "Invalid token audience")
			return
		}
		if a.cfg.JWTIssuer != "" {
			issuer, _ := claims["iss"].(string)
			if issuer != a.cfg.JWTIssuer {
				writeError(c, http.StatusUnauthorized, "Invalid token issuer")
				return
			}
		}
		sub, _ := claims["sub"].(string)
		sub = strings.TrimSpace(sub)
		if sub == "" {
			writeError(c, http.StatusUnauthorized, "Token subject missing")
			return
		}

		c.Set(ctxUserID, sub)
		c.Next()
	}
}

// bearerToken reads the Authorization header. Websocket upgrades may pass the
// token as access_token since browsers cannot set headers on them.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return strings.TrimSpace(c.Query("access_token"))
	}
	return ""
}

func claimHasAudience(value any, audience string) bool {
	switch v := value.(type) {
	case string:
		return v == audience
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == audience {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == audience {
				return true
			}
		}
	}
	return false
}

// userStore scopes the backend to the authenticated user. It writes the
// error response itself and returns false when that fails.
func (a *App) userStore(c *gin.Context) (*store.UserStore, bool) {
	userID := c.GetString(ctxUserID)
	docs, err := store.ForUser(a.backend, userID)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return docs, true
}

func (a *App) publish(ctx context.Context, userID, kind, recordID string) {
	ev := notify.Event{UserID: userID, Kind: kind, RecordID: recordID, At: a.now().UTC()}
	if err := a.publisher.Publish(ctx, ev); err != nil {
		a.log.Warn("publish event failed", "user_id", userID, "kind", kind, "error", err)
	}
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
