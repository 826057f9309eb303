package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fieldcalc/fieldcalc/util"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	socketWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketClient is a middleman between the websocket connection and the hub
type SocketClient struct {
	hub  *SocketHub
	send chan []byte
}

func (c *SocketClient) writePump(ws *websocket.Conn) {
	defer ws.Close()

	for msg := range c.send {
		if err := ws.SetWriteDeadline(time.Now().Add(socketWriteTimeout)); err != nil {
			return
		}
		if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump discards incoming messages and unregisters the client once the connection closes
func (c *SocketClient) readPump(ws *websocket.Conn) {
	defer func() {
		c.hub.unregister <- c
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// ServeWebsocket handles websocket requests from the peer
func ServeWebsocket(hub *SocketHub, w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.ERROR.Println(err)
		return
	}

	client := &SocketClient{hub: hub, send: make(chan []byte, 256)}
	hub.register <- client

	go client.writePump(ws)
	go client.readPump(ws)
}

// SocketHub maintains the set of active clients and broadcasts messages to the clients
type SocketHub struct {
	log        *util.Logger
	register   chan *SocketClient
	unregister chan *SocketClient
	clients    map[*SocketClient]bool
}

// NewSocketHub creates a web socket hub that distributes published values to connected clients
func NewSocketHub() *SocketHub {
	return &SocketHub{
		log:        util.NewLogger("socket"),
		register:   make(chan *SocketClient),
		unregister: make(chan *SocketClient),
		clients:    make(map[*SocketClient]bool),
	}
}

func encode(p util.Param) ([]byte, error) {
	return json.Marshal(map[string]interface{}{p.Key: p.Val})
}

func (h *SocketHub) broadcast(msg []byte) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Run starts data and status distribution
func (h *SocketHub) Run(in <-chan util.Param) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
			}

		case p, ok := <-in:
			if !ok {
				return
			}

			msg, err := encode(p)
			if err != nil {
				h.log.ERROR.Printf("encode %s: %v", p.Key, err)
				continue
			}

			h.broadcast(msg)
		}
	}
}
