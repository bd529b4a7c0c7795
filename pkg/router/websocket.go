package router

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pickstudio/chat-backend/pkg/ws"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newWSClient(ctx context.Context, conn *websocket.Conn) *ws.Client {
	return ws.NewClient(conn, xcontext.Configs(ctx).Relay.Compression)
}
