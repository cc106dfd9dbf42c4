// Package inspector streams chipset snapshots to websocket viewers.
package inspector

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/brotli/go/cbrotli"
	"github.com/gorilla/websocket"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Source publishes snapshots. *agnus.Agnus is a Source once
// inspection is enabled.
type Source interface {
	Inspection() *agnus.Snapshot
}

// Hub polls a Source and sends every new snapshot to the connected
// viewers.
type Hub struct {
	src Source
	log log.Logger

	clients              map[*client]bool
	broadcast            chan []byte
	register, unregister chan *client
	nextID               uint8
	done                 chan struct{}

	interval         time.Duration
	compression      bool
	compressionLevel int
	cache            *cache

	upgrader websocket.Upgrader
	mu       sync.Mutex
}

// Opt configures a Hub.
type Opt func(h *Hub)

// WithLogger sets the logger of the hub.
func WithLogger(l log.Logger) Opt {
	return func(h *Hub) {
		h.log = log.OrNull(l)
	}
}

// WithInterval sets how often the source is polled.
func WithInterval(d time.Duration) Opt {
	return func(h *Hub) {
		h.interval = d
	}
}

// WithCompression brotli compresses frames at the given quality (0-11).
func WithCompression(level int) Opt {
	return func(h *Hub) {
		h.compression = true
		h.compressionLevel = level
	}
}

// WithCacheSize sets how many frames viewers are expected to remember.
// A size of 0 disables repeats.
func WithCacheSize(n int) Opt {
	return func(h *Hub) {
		if n <= 0 {
			h.cache = newCache(1)
			h.cache.setEnabled(false)
			return
		}
		h.cache = newCache(n)
	}
}

// DefaultCacheSize is the number of frames cached when no WithCacheSize
// is given. Viewers must use the same size.
const DefaultCacheSize = 32

// New returns a hub polling src. Run must be called before viewers
// connect.
func New(src Source, opts ...Opt) *Hub {
	h := &Hub{
		src:              src,
		log:              log.NewNullLogger(),
		clients:          make(map[*client]bool),
		broadcast:        make(chan []byte, 8),
		register:         make(chan *client),
		unregister:       make(chan *client),
		done:             make(chan struct{}),
		interval:         time.Second / 50,
		compressionLevel: 5,
		cache:            newCache(DefaultCacheSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ServeHTTP upgrades the request to a websocket viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("inspector: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 16), connectedAt: time.Now()}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.readPump()
	go c.writePump()
}

// Run polls the source and serves viewers until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	poll := time.NewTicker(h.interval)
	defer poll.Stop()
	info := time.NewTicker(time.Second)
	defer info.Stop()

	var last *agnus.Snapshot
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			close(h.done)
			return ctx.Err()
		case c := <-h.register:
			h.nextID++
			c.id = h.nextID
			// a new viewer has an empty cache
			h.resetCache()
			h.clients[c] = true
			c.send <- h.clientInfo()
			h.log.Infof("inspector: viewer %d connected from %s", c.id, c.conn.RemoteAddr())
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Infof("inspector: viewer %d disconnected after %s", c.id, time.Since(c.connectedAt).Round(time.Second))
			}
		case msg := <-h.broadcast:
			h.sendAll(msg)
		case <-info.C:
			h.sendAll(h.serverInfo())
		case <-poll.C:
			s := h.src.Inspection()
			if s == nil || s == last {
				continue
			}
			last = s
			if len(h.clients) == 0 {
				continue
			}
			msg, err := h.encode(s)
			if err != nil {
				h.log.Errorf("inspector: encoding frame: %v", err)
				continue
			}
			h.sendAll(msg)
		}
	}
}

// ListenAndServe serves viewers on addr until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", h)
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		srv.Shutdown(shutdown)
	}()

	h.log.Infof("inspector: listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// post queues msg for every viewer.
func (h *Hub) post(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) sendAll(msg []byte) {
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// too slow to keep up
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) resetCache() {
	h.cache.Lock()
	for i := range h.cache.entries {
		h.cache.entries[i] = cacheEntry{}
	}
	h.cache.idx = 0
	h.cache.Unlock()
	for c := range h.clients {
		select {
		case c.send <- []byte{CacheReset}:
		default:
		}
	}
}

// encode builds the message for s. Frames that only differ from a
// cached frame in their clock are sent as the cache index.
func (h *Hub) encode(s *agnus.Snapshot) ([]byte, error) {
	f := FrameOf(s)
	key := f
	key.Clock, key.Nr = 0, 0
	kb, err := key.MarshalBinary()
	if err != nil {
		return nil, err
	}
	hash := xxhash.Sum64(kb)
	if idx := h.cache.index(hash); idx != -1 {
		msg := []byte{FrameRepeat}
		msg = binary.LittleEndian.AppendUint16(msg, uint16(idx))
		msg = binary.LittleEndian.AppendUint64(msg, uint64(f.Clock))
		msg = binary.LittleEndian.AppendUint64(msg, uint64(f.Nr))
		return msg, nil
	}

	data, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	compress, level := h.compression, h.compressionLevel
	h.mu.Unlock()

	var flags uint8
	if compress {
		data, err = cbrotli.Encode(data, cbrotli.WriterOptions{Quality: level})
		if err != nil {
			return nil, err
		}
		flags |= flagCompressed
	}
	h.cache.add(hash, kb)
	return append([]byte{FrameData, flags}, data...), nil
}

func (h *Hub) clientInfo() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.RLock()
	defer h.cache.RUnlock()
	return []byte{ClientInfo, 0, boolByte(h.compression), uint8(h.compressionLevel), boolByte(h.cache.enabled), uint8(len(h.cache.entries))}
}

func (h *Hub) serverInfo() []byte {
	data := []byte{ServerInfo}
	for c := range h.clients {
		data = append(data, c.id)
		data = binary.LittleEndian.AppendUint16(data, c.latency())
	}
	return data
}
