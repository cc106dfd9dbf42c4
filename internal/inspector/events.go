package inspector

// Type is the first byte of every message sent to a viewer.
type Type = uint8

const (
	// FrameData carries an encoded Frame.
	FrameData Type = iota
	// FrameRepeat carries the cache index of a frame the viewer
	// has already been sent.
	FrameRepeat
	// ServerInfo carries the round trip time of every viewer.
	ServerInfo
	// ClientInfo carries the hub settings.
	ClientInfo
	// CacheReset tells viewers to forget every cached frame.
	CacheReset
)

// Event is a setting a viewer can change. Viewers send
// [system, Event, value].
type Event = uint8

const (
	_ Event = iota
	Compression
	CompressionLevel
	Caching
	KeepAlive = 254
	Closing   = 255
)

// system is the first byte of a settings message from a viewer.
const system = 10

// flags of a FrameData message
const flagCompressed = 1 << 0
