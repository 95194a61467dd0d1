package hub

import (
	"log"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gitlab.com/sketchdeck/services/board/internal/auth"
	"gitlab.com/sketchdeck/services/board/internal/ratelimit"
)

// Handler upgrades authenticated HTTP requests to websocket connections.
// The bearer token travels as a query parameter on the connection URI; any
// verification failure rejects the connection before a single message is
// processed, so anonymous participation is impossible.
type Handler struct {
	hub      *Hub
	verifier *auth.Verifier
	limiter  *ratelimit.Limiter
	upgrader websocket.Upgrader
}

func NewHandler(h *Hub, verifier *auth.Verifier, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		hub:      h,
		verifier: verifier,
		limiter:  limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  128 * 1024,
			WriteBufferSize: 128 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Implement proper origin checking in production
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID, err := h.verifier.UserID(token)
	if err != nil {
		log.Printf("[Hub] Rejected connection: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ip, _, splitErr := net.SplitHostPort(r.RemoteAddr)
	if splitErr != nil {
		ip = r.RemoteAddr
	}
	if err := h.limiter.CheckConnect(r.Context(), userID, ip); err != nil {
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] WebSocket upgrade error: %v", err)
		return
	}

	conn := &Conn{
		ID:     uuid.New().String(),
		UserID: userID,
		sock:   sock,
		Send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}
	h.hub.register <- conn

	go conn.writePump()
	go conn.readPump(h.hub)
}
