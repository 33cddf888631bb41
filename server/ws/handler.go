package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sentinela-io/sentinela/server/auth"
)

const (
	readLimit    = 512
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler authenticates a websocket connect request & registers the
// session under the token's user id, so pushes can be targeted.
type Handler struct {
	hub       *Hub
	jwtSecret string
}

func NewHandler(hub *Hub, jwtSecret string) *Handler {
	return &Handler{hub: hub, jwtSecret: jwtSecret}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	claims, err := auth.DecodeJWT(bearerToken(r), h.jwtSecret)
	if err != nil {
		rw.Header().Add("Content-Type", "application/json")
		rw.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(rw).Encode(map[string]string{"error": err.Error()})
		return
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		// Upgrade already wrote the http error
		logg.Warnf("ws upgrade failed: %v", err)
		return
	}

	s := h.hub.add(uint(userID), conn)
	go h.pingLoop(s)
	h.readLoop(s)
}

// readLoop drains client frames so pings/pongs & close frames are
// processed; the session is removed once the connection dies.
func (h *Handler) readLoop(s *session) {
	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.remove(s)
}

func (h *Handler) pingLoop(s *session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.writeMu.Lock()
		err := s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
		s.writeMu.Unlock()

		if err != nil {
			return
		}
	}
}

// bearerToken pulls the access token from the 'token' query param,
// falling back to the Authorization header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeaderList := strings.Split(r.Header.Get("Authorization"), "Bearer ")
	if len(authHeaderList) < 2 {
		return ""
	}

	return authHeaderList[1]
}
