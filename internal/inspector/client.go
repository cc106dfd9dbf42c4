package inspector

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   uint8

	mu          sync.RWMutex
	avgLatency  uint16 // milliseconds
	connectedAt time.Time
}

func (c *client) latency() uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.avgLatency
}

func (c *client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// readPump handles settings sent by the viewer.
func (c *client) readPump() {
	defer func() {
		c.leave()
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(message) == 0 {
			continue
		}

		switch message[0] {
		case system:
			if len(message) < 3 {
				continue
			}
			h := c.hub
			switch message[1] {
			case Compression:
				h.mu.Lock()
				h.compression = message[2] == 1
				h.mu.Unlock()
			case CompressionLevel:
				if message[2] > 11 {
					continue
				}
				h.mu.Lock()
				h.compressionLevel = int(message[2])
				h.mu.Unlock()
			case Caching:
				h.cache.setEnabled(message[2] == 1)
				h.post([]byte{CacheReset})
			case KeepAlive:
				continue
			default:
				h.log.Debugf("inspector: viewer %d sent unknown setting %d", c.id, message[1])
				continue
			}
			h.post([]byte{ClientInfo, message[1], message[2]})
		case Closing:
			return
		}
	}
}

// writePump sends queued messages to the viewer, measuring the
// round trip time as it goes.
func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			c.leave()
			// drain until the hub closes send
			for range c.send {
			}
			return
		}

		if rtt, err := tcpRTT(c.conn.UnderlyingConn()); err == nil {
			c.mu.Lock()
			c.avgLatency = (c.avgLatency*9 + uint16(rtt.Milliseconds())) / 10
			c.mu.Unlock()
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
