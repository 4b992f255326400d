package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/registry"
)

const shutdownTimeout = 5 * time.Second

type sessionManager interface {
	Connect(ctx context.Context, connectionID string, handle registry.Handle) error
	HandleMessage(ctx context.Context, connectionID string, data []byte) error
	Disconnect(ctx context.Context, connectionID string)
}

type Server struct {
	logger   *slog.Logger
	manager  sessionManager
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, manager sessionManager) *Server {
	return &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the browser client is served from another origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler serves the game socket on /ws and on the bare root.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	upgrade := func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	}

	mux.HandleFunc("/ws", upgrade)
	mux.HandleFunc("/{$}", upgrade)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until it closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(uuid.NewString(), wsConn, that.logger)
	log = log.With("connectionID", conn.ID())

	go conn.writePump()

	if err = that.manager.Connect(ctx, conn.ID(), conn); err != nil {
		log.Error("failed to connect player", "error", err)
		_ = conn.Close()

		return
	}

	log.Info("player connected", "remote", req.RemoteAddr)

	conn.readPump(ctx, func(ctx context.Context, data []byte) {
		if err := that.manager.HandleMessage(ctx, conn.ID(), data); err != nil {
			log.Warn("rejected message", "error", err)
		}
	})

	that.manager.Disconnect(context.WithoutCancel(ctx), conn.ID())
	_ = conn.Close()

	log.Info("player disconnected")
}
