package server

import (
	"context"
	"net/http"
	"time"

	log "log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"aide/internal/assistant"
	"aide/pkg/api"
)

const internalErrorReply = "An internal server error occurred while processing the command. Please check server logs."

const homePage = `<!DOCTYPE html>
<html>
<head><title>Aide Backend</title></head>
<body>
    <h1>Aide Backend</h1>
    <p>The server is running.</p>
    <p>The frontend should send POST requests to the <code>/process</code> endpoint.</p>
</body>
</html>
`

// Config controls the HTTP surface.
type Config struct {
	Addr  string
	Debug bool
}

// Server exposes the assistant over HTTP and websocket.
type Server struct {
	assistant *assistant.Assistant
	engine    *gin.Engine
	http      *http.Server
	upgrader  websocket.Upgrader
	startedAt time.Time
}

func New(a *assistant.Assistant, cfg Config) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	corsConfig.AllowWebSockets = true
	engine.Use(cors.New(corsConfig))

	s := &Server{
		assistant: a,
		engine:    engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		startedAt: time.Now(),
	}

	engine.GET("/", s.handleHome)
	engine.GET("/health", s.handleHealth)
	engine.POST("/process", s.handleProcess)
	engine.GET("/ws", s.handleWS)

	s.http = &http.Server{Addr: cfg.Addr, Handler: engine}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Info("HTTP server listening", "addr", s.http.Addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHome(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(homePage))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleProcess(c *gin.Context) {
	// Query is a pointer so a present-but-empty query is distinguishable
	// from a missing field.
	var req struct {
		Query *string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.CommandReply{Error: "Invalid request format. Expected JSON."})
		return
	}
	if req.Query == nil {
		c.JSON(http.StatusBadRequest, api.CommandReply{Error: "Missing 'query' field in request JSON."})
		return
	}

	log.Info("Received query", "query", *req.Query)

	reply, ok := s.dispatch(c.Request.Context(), *req.Query)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.CommandReply{Error: internalErrorReply})
		return
	}

	c.JSON(http.StatusOK, api.CommandReply{Reply: reply})
}

// dispatch is the outermost guard: a panicking handler becomes a generic
// internal error instead of tearing down the request.
func (s *Server) dispatch(ctx context.Context, query string) (reply string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Dispatch panicked", "query", query, "panic", r)
			ok = false
		}
	}()
	return s.assistant.Dispatch(ctx, query), true
}
