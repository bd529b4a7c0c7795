package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func Test_Client_CloseReleasesBlockedReader(t *testing.T) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	clients := make(chan *Client, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		clients <- NewClient(conn, false)
	}))
	defer ts.Close()

	peer, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer peer.Close()

	client := <-clients

	// Flood past the inbound buffer without draining it, so the reader pump
	// ends up blocked holding one undelivered frame.
	for i := 0; i < 2*cap(client.R); i++ {
		require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte("flood")))
	}

	require.Eventually(t, func() bool {
		return len(client.R) == cap(client.R)
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	client.Close()

	// The pump gives the held frame up on close instead of delivering it
	// once a reader shows up, so draining yields the buffer and nothing more.
	drained := 0
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-client.R:
			if !ok {
				require.Equal(t, cap(client.R), drained)
				return
			}

			drained++
		case <-deadline:
			t.Fatal("inbound channel never closed")
		}
	}
}
