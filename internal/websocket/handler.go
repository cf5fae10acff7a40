package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a websocket connection to a progress channel and blocks until
// the browser disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, channel string) {
	client := &Client{Hub: hub, Conn: c, Channel: channel, Send: make(chan []byte, 32)}
	if !hub.subscribe(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
