package inspector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/brotli/go/cbrotli"
	"github.com/gorilla/websocket"
)

// ErrUnknownFrame is returned for a repeat of a frame the viewer was
// never sent.
var ErrUnknownFrame = errors.New("inspector: repeat of unknown frame")

// Viewer decodes the messages of a hub, keeping the same frame cache.
type Viewer struct {
	frames []*Frame
	idx    int
}

// NewViewer returns a viewer for a hub with the given cache size.
func NewViewer(cacheSize int) *Viewer {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	return &Viewer{frames: make([]*Frame, cacheSize)}
}

// Decode decodes msg. ok is false for messages that carry no frame.
func (v *Viewer) Decode(msg []byte) (f Frame, ok bool, err error) {
	if len(msg) == 0 {
		return f, false, ErrShortFrame
	}
	switch msg[0] {
	case FrameData:
		if len(msg) < 2 {
			return f, false, ErrShortFrame
		}
		data := msg[2:]
		if msg[1]&flagCompressed != 0 {
			if data, err = cbrotli.Decode(data); err != nil {
				return f, false, fmt.Errorf("inspector: decompressing frame: %w", err)
			}
		}
		if err := f.UnmarshalBinary(data); err != nil {
			return f, false, err
		}
		cached := f
		v.frames[v.idx] = &cached
		v.idx = (v.idx + 1) % len(v.frames)
		return f, true, nil
	case FrameRepeat:
		if len(msg) < 19 {
			return f, false, ErrShortFrame
		}
		idx := int(binary.LittleEndian.Uint16(msg[1:]))
		if idx >= len(v.frames) || v.frames[idx] == nil {
			return f, false, ErrUnknownFrame
		}
		f = *v.frames[idx]
		f.Clock = int64(binary.LittleEndian.Uint64(msg[3:]))
		f.Nr = int64(binary.LittleEndian.Uint64(msg[11:]))
		return f, true, nil
	case CacheReset:
		for i := range v.frames {
			v.frames[i] = nil
		}
		v.idx = 0
	}
	return f, false, nil
}

// Watch connects to the hub at url and calls fn for every frame until
// ctx is done or the connection fails.
func Watch(ctx context.Context, url string, cacheSize int, fn func(Frame)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.BinaryMessage, []byte{Closing})
		conn.Close()
	}()

	v := NewViewer(cacheSize)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		f, ok, err := v.Decode(msg)
		if err != nil {
			return err
		}
		if ok {
			fn(f)
		}
	}
}
