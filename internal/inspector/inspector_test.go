package inspector

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/gorilla/websocket"

	"github.com/thelolagemann/goagnus/internal/agnus"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/memory"
)

func testFrame() Frame {
	f := Frame{
		Clock:   123456789,
		Nr:      42,
		V:       0x12C,
		H:       0xE2,
		LOF:     true,
		DMACON:  0x03D0,
		INTREQ:  0x0060,
		INTENA:  0x4020,
		CopPC:   0x1010,
		Copper:  "Wait",
		Blitter: "Idle",
		Busy:    true,
	}
	for i := range f.Line {
		f.Line[i] = dma.Owner(i % int(dma.NumOwners))
	}
	for i := range f.Stats {
		f.Stats[i] = int64(i * 1000)
	}
	return f
}

func TestFrameEncodeRoundTrip(t *testing.T) {
	want := testFrame()
	b, err := want.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var got Frame
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	t.Run("short", func(t *testing.T) {
		for _, n := range []int{0, 10, len(b) - 1} {
			var f Frame
			if err := f.UnmarshalBinary(b[:n]); !errors.Is(err, ErrShortFrame) {
				t.Errorf("%d bytes: expected ErrShortFrame, got %v", n, err)
			}
		}
	})
	t.Run("long state name", func(t *testing.T) {
		f := want
		f.Copper = strings.Repeat("x", 256)
		if _, err := f.MarshalBinary(); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestFrameOf(t *testing.T) {
	mem, err := memory.NewChipRAM(memory.Size512K)
	if err != nil {
		t.Fatal(err)
	}
	a, err := agnus.New(mem, agnus.WithInspection())
	if err != nil {
		t.Fatal(err)
	}
	a.ExecuteFrame()

	s := a.Inspection()
	if s == nil {
		t.Fatal("no snapshot published")
	}
	f := FrameOf(s)
	if f.Clock != s.Clock || f.Nr != s.Frame.Nr || int(f.V) != s.Pos.V || int(f.H) != s.Pos.H {
		t.Errorf("frame %+v does not match snapshot position %s at %d", f, s.Pos, s.Clock)
	}
	if f.Line != s.Line || f.Stats != s.Stats {
		t.Error("bus usage not copied")
	}
	if f.Copper != s.Copper.State || f.Blitter != s.Blitter.State {
		t.Errorf("states %q/%q, expected %q/%q", f.Copper, f.Blitter, s.Copper.State, s.Blitter.State)
	}
}

func TestCache(t *testing.T) {
	c := newCache(2)
	if c.index(1) != -1 {
		t.Error("empty cache has an entry")
	}
	if i := c.add(1, []byte{1}); i != 0 {
		t.Errorf("first entry at %d", i)
	}
	c.add(2, []byte{2})
	c.add(3, []byte{3})
	if c.index(1) != -1 {
		t.Error("oldest entry not overwritten")
	}
	if c.index(3) != 0 || c.index(2) != 1 {
		t.Errorf("unexpected indices %d %d", c.index(3), c.index(2))
	}
	c.setEnabled(false)
	if c.index(2) != -1 {
		t.Error("disabled cache has an entry")
	}
}

type source struct {
	p atomic.Pointer[agnus.Snapshot]
}

func (s *source) Inspection() *agnus.Snapshot {
	return s.p.Load()
}

func snapshot(clock int64) *agnus.Snapshot {
	s := &agnus.Snapshot{Clock: clock, DMACON: 0x0200}
	s.Frame.Nr = clock / 1000
	s.Copper.State = "Wait"
	s.Blitter.State = "Idle"
	s.Line[0x01] = dma.Refresh
	s.Stats[dma.Refresh] = 4 * 313
	return s
}

func TestHub(t *testing.T) {
	for _, tt := range []struct {
		name string
		opts []Opt
	}{
		{"plain", nil},
		{"compressed", []Opt{WithCompression(9)}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			src := &source{}
			hub := New(src, append([]Opt{WithInterval(time.Millisecond)}, tt.opts...)...)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go hub.Run(ctx)

			srv := httptest.NewServer(hub)
			defer srv.Close()

			conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))

			_, msg, err := conn.ReadMessage()
			if err != nil {
				t.Fatal(err)
			}
			if msg[0] != ClientInfo || msg[5] != DefaultCacheSize {
				t.Fatalf("expected client info first, got %v", msg)
			}

			v := NewViewer(DefaultCacheSize)
			next := func(want Type) Frame {
				t.Helper()
				for {
					_, msg, err := conn.ReadMessage()
					if err != nil {
						t.Fatal(err)
					}
					f, ok, err := v.Decode(msg)
					if err != nil {
						t.Fatal(err)
					}
					if !ok {
						continue
					}
					if msg[0] != want {
						t.Errorf("got message type %d, expected %d", msg[0], want)
					}
					return f
				}
			}

			first := snapshot(1000)
			src.p.Store(first)
			if diff := deep.Equal(next(FrameData), FrameOf(first)); diff != nil {
				t.Error(diff)
			}

			// same picture one frame later
			second := snapshot(2000)
			src.p.Store(second)
			if diff := deep.Equal(next(FrameRepeat), FrameOf(second)); diff != nil {
				t.Error(diff)
			}

			third := snapshot(3000)
			third.DMACON = 0x0300
			src.p.Store(third)
			if diff := deep.Equal(next(FrameData), FrameOf(third)); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestViewerUnknownRepeat(t *testing.T) {
	v := NewViewer(4)
	msg := make([]byte, 19)
	msg[0] = FrameRepeat
	if _, _, err := v.Decode(msg); !errors.Is(err, ErrUnknownFrame) {
		t.Errorf("expected ErrUnknownFrame, got %v", err)
	}
	if _, _, err := v.Decode([]byte{FrameRepeat, 0}); !errors.Is(err, ErrShortFrame) {
		t.Errorf("expected ErrShortFrame, got %v", err)
	}
}
