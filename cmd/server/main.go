package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/sketchdeck/services/board/internal/auth"
	"gitlab.com/sketchdeck/services/board/internal/config"
	"gitlab.com/sketchdeck/services/board/internal/db"
	"gitlab.com/sketchdeck/services/board/internal/hub"
	"gitlab.com/sketchdeck/services/board/internal/ratelimit"
	"gitlab.com/sketchdeck/services/board/internal/room"
	"gitlab.com/sketchdeck/services/board/internal/store"
)

// Server bundles every service the handlers need. All registries live here,
// created at startup and torn down at shutdown.
type Server struct {
	db        *db.DB
	rooms     *room.Manager
	hub       *hub.Hub
	wsHandler *hub.Handler
}

func main() {
	log.Println("[Server] Starting board sync server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Invalid configuration: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("[Server] Failed to connect to database: %v", err)
	}
	defer database.Close()

	roomStore := store.NewRoomStore(database.Postgres)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := roomStore.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatalf("[Server] Failed to ensure schema: %v", err)
	}
	cancel()

	rooms := room.NewManager(roomStore)
	presence := store.NewPresence(database.Redis)
	limiter := ratelimit.NewLimiter(database.Redis)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	h := hub.New(rooms, presence)
	go h.Run()

	server := &Server{
		db:        database,
		rooms:     rooms,
		hub:       h,
		wsHandler: hub.NewHandler(h, verifier, limiter),
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.setupRouter(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[Server] HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Forced shutdown: %v", err)
	}
	h.Stop()
	rooms.Close()

	log.Println("[Server] Server exited gracefully")
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/ws", s.wsHandler).Methods("GET")

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Health(ctx); err != nil {
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
