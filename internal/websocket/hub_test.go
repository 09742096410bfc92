package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmomorfaruk/community-guardian/internal/domain"
)

func testAlert(id int64) *domain.Alert {
	return &domain.Alert{
		ID:            id,
		Timestamp:     time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC),
		Latitude:      1.0,
		Longitude:     2.0,
		SubmitterName: "alice",
		AlertType:     "panic",
	}
}

// testHub sets up a Hub behind a test HTTP server that upgrades connections
// and runs the same read pump the real handler uses. Returns the hub and a
// dial function.
func testHub(t *testing.T, maxClients int) (*Hub, func() *ws.Conn) {
	t.Helper()

	hub := NewHub(maxClients, clockwork.NewRealClock())
	t.Cleanup(func() { hub.Stop() })

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		if err := hub.Register(conn); err != nil {
			return
		}

		go func() {
			defer hub.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}))
	t.Cleanup(func() { server.Close() })

	dial := func() *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return hub, dial
}

// waitForClientCount polls until the hub reports the expected count.
func waitForClientCount(hub *Hub, expected int) bool {
	for i := 0; i < 100; i++ {
		if hub.ClientCount() == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func readAlertJSON(t *testing.T, conn *ws.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(msg, &result))
	return result
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub, dial := testHub(t, 10)

	conn := dial()
	require.True(t, waitForClientCount(hub, 1))

	hub.Broadcast(testAlert(1))

	result := readAlertJSON(t, conn)
	assert.Equal(t, float64(1), result["id"])
	assert.Equal(t, "2023-11-14T22:13:20Z", result["timestamp"])
	assert.Equal(t, 1.0, result["latitude"])
	assert.Equal(t, 2.0, result["longitude"])
	assert.Equal(t, "alice", result["submitterName"])
	assert.Equal(t, "panic", result["alertType"])
}

func TestHub_MultipleClients(t *testing.T) {
	hub, dial := testHub(t, 10)

	conn1 := dial()
	conn2 := dial()
	require.True(t, waitForClientCount(hub, 2))

	hub.Broadcast(testAlert(7))

	for _, conn := range []*ws.Conn{conn1, conn2} {
		result := readAlertJSON(t, conn)
		assert.Equal(t, float64(7), result["id"])
	}
}

func TestHub_DisconnectedClientRemoved(t *testing.T) {
	hub, dial := testHub(t, 10)

	conn1 := dial()
	conn2 := dial()
	require.True(t, waitForClientCount(hub, 2))

	// Drop one client, then broadcast while the hub may still hold its
	// stale handle. The survivor must receive the alert and the dead
	// client must be gone afterwards.
	conn1.Close()
	hub.Broadcast(testAlert(3))

	result := readAlertJSON(t, conn2)
	assert.Equal(t, float64(3), result["id"])

	require.True(t, waitForClientCount(hub, 1))
}

func TestHub_BroadcastNoClients(t *testing.T) {
	hub, _ := testHub(t, 10)
	// Should not panic or block
	hub.Broadcast(testAlert(1))
}

// newTestConnPair creates a connected pair of WebSocket connections for testing.
func newTestConnPair(t *testing.T) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(func() { srv.Close() })

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, clientConn
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(10, clockwork.NewRealClock())
	t.Cleanup(func() { hub.Stop() })

	server, _ := newTestConnPair(t)
	require.NoError(t, hub.Register(server))
	require.Equal(t, 1, hub.ClientCount())

	// Removal may race a concurrent send in production; the second call
	// must be a silent no-op.
	hub.Unregister(server)
	hub.Unregister(server)

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_MaxClients(t *testing.T) {
	hub, dial := testHub(t, 2)

	dial()
	dial()
	require.True(t, waitForClientCount(hub, 2))

	// The third client is rejected and its connection closed.
	conn3 := dial()
	conn3.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn3.ReadMessage()
	assert.Error(t, err, "connection should be closed after rejection")
	assert.Equal(t, 2, hub.ClientCount())
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, dial := testHub(t, 10)

	conn := dial()
	require.True(t, waitForClientCount(hub, 1))

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection should be closed after hub stop")
}

func TestHub_ConcurrentRegisterAndBroadcast(t *testing.T) {
	hub, dial := testHub(t, 100)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			hub.Broadcast(testAlert(int64(i + 1)))
		}
	}()

	conns := make([]*ws.Conn, 0, 10)
	for i := 0; i < 10; i++ {
		conns = append(conns, dial())
	}
	<-done

	require.True(t, waitForClientCount(hub, 10))

	// A broadcast after all registrations reaches every client.
	hub.Broadcast(testAlert(999))
	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		for {
			_, msg, err := conn.ReadMessage()
			require.NoError(t, err)
			var result map[string]any
			require.NoError(t, json.Unmarshal(msg, &result))
			if result["id"] == float64(999) {
				break
			}
		}
	}
}
