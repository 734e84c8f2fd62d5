package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"velo-registration/internal/auth"
	"velo-registration/internal/config"
	"velo-registration/internal/mailer"
	"velo-registration/internal/metrics"
	"velo-registration/internal/registration"
	"velo-registration/internal/roster"
)

const requestIDKey = "request_id"

// Deps are the services the HTTP layer routes to. All are built once in main.
type Deps struct {
	Registration *registration.Service
	Roster       *roster.Service
	Mailer       mailer.Provider
	Sessions     *auth.Sessions
	Metrics      *metrics.Metrics
	Log          logrus.FieldLogger
}

const baseWriteTimeout = 30 * time.Second

func New(cfg config.Config, d Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Router(cfg, d),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(d),
		IdleTimeout:       120 * time.Second,
	}
}

// writeTimeout leaves room for a registration whose sinks all time out.
func writeTimeout(d Deps) time.Duration {
	if d.Registration == nil {
		return baseWriteTimeout
	}
	return baseWriteTimeout + d.Registration.MirrorBudget()
}

func Router(cfg config.Config, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))

	h := &handlers{deps: d}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/register", h.register)

		api.POST("/admin/login", d.Sessions.LoginHandler())
		api.POST("/admin/logout", d.Sessions.LogoutHandler())
		api.GET("/admin/session", d.Sessions.SessionHandler())

		admin := api.Group("", d.Sessions.Require())
		{
			admin.GET("/participants", h.listParticipants)
			admin.GET("/participants/export.csv", h.exportCSV)
			admin.POST("/participants/mark-seen", h.markSeen)
			admin.DELETE("/participants/:id", h.deleteParticipant)
			admin.POST("/participants/bulk-delete", h.bulkDelete)
			admin.POST("/send-email", h.sendEmail)
		}
	}

	r.NoRoute(spa(cfg.StaticDir))
	return r
}

// spa serves files from dir and falls back to index.html for client-side
// routes. Unknown /api paths stay 404.
func spa(dir string) gin.HandlerFunc {
	fs := http.Dir(dir)
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nerasta"})
			return
		}
		clean := path.Clean("/" + p)
		if path.Base(clean) != "index.html" {
			if f, err := fs.Open(clean); err == nil {
				st, statErr := f.Stat()
				_ = f.Close()
				if statErr == nil && !st.IsDir() {
					c.FileFromFS(clean, fs)
					return
				}
			}
		}
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nerasta"})
			return
		}
		c.File(index)
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		start := time.Now()
		c.Next()

		log.WithFields(logrus.Fields{
			requestIDKey: rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("request")
	}
}

func requestLog(c *gin.Context, log logrus.FieldLogger) logrus.FieldLogger {
	return log.WithField(requestIDKey, c.GetString(requestIDKey))
}
