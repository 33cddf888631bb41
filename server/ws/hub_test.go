package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sentinela-io/sentinela/server/auth"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func dialTestServer(t *testing.T, serverURL string, userID uint) *websocket.Conn {
	t.Helper()

	token, err := auth.EncodeJWT(auth.NewAccessTokenClaims(userID, "stark@avengers.com"), testSecret)
	assert.Nil(t, err)

	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Nil(t, err)

	return conn
}

func waitForSessionCount(hub *Hub, userID uint, want int) bool {
	for i := 0; i < 50; i++ {
		if hub.ActiveSessionCount(userID) == want {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}

	return false
}

func TestPublishDeliversToLiveSessions(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(NewHandler(hub, testSecret))
	defer server.Close()

	conn := dialTestServer(t, server.URL, 42)
	defer conn.Close()

	assert.True(t, waitForSessionCount(hub, 42, 1), "expected session to register")

	hub.Publish(42, map[string]string{"type": "PANIC_ALERT", "message": "help"})

	event := map[string]string{}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	assert.Nil(t, conn.ReadJSON(&event))
	assert.Equal(t, "PANIC_ALERT", event["type"])
	assert.Equal(t, "help", event["message"])
}

func TestPublishWithoutSessionIsNoop(t *testing.T) {
	hub := NewHub()

	assert.Equal(t, 0, hub.ActiveSessionCount(42))
	hub.Publish(42, map[string]string{"message": "help"})
}

func TestPublishSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(NewHandler(hub, testSecret))
	defer server.Close()

	conn := dialTestServer(t, server.URL, 42)
	defer conn.Close()

	otherConn := dialTestServer(t, server.URL, 7)
	defer otherConn.Close()

	assert.True(t, waitForSessionCount(hub, 42, 1))
	assert.True(t, waitForSessionCount(hub, 7, 1))

	hub.Publish(42, map[string]string{"message": "help"})

	// the other user's session stays quiet
	otherConn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, _, err := otherConn.ReadMessage()
	assert.NotNil(t, err)
}

func TestHandlerRejectsMissingOrBadToken(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(NewHandler(hub, testSecret))
	defer server.Close()

	wsURL := strings.Replace(server.URL, "http", "ws", 1)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NotNil(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=not-a-token", nil)
	assert.NotNil(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestSessionRemovedOnDisconnect(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(NewHandler(hub, testSecret))
	defer server.Close()

	conn := dialTestServer(t, server.URL, 42)
	assert.True(t, waitForSessionCount(hub, 42, 1))

	conn.Close()
	assert.True(t, waitForSessionCount(hub, 42, 0), "expected session to be removed")
}
