package agnus

import (
	"encoding/binary"
	"hash"

	"github.com/cespare/xxhash"

	"github.com/thelolagemann/goagnus/internal/beam"
	"github.com/thelolagemann/goagnus/internal/dma"
	"github.com/thelolagemann/goagnus/internal/scheduler"
)

// TraceRecord describes one executed DMA cycle.
type TraceRecord struct {
	Clock  int64
	Pos    beam.Position
	Owner  dma.Owner // bus owner of the cycle
	Value  uint16    // word transferred, if any
	CopPC  uint32
	Copper scheduler.EventID // pending copper event
	Blit   scheduler.EventID // pending blitter event
}

// Trace calls fn after the events of every cycle have run. A nil fn
// turns tracing off.
func (a *Agnus) Trace(fn func(TraceRecord)) {
	a.traceFn = fn
}

func (a *Agnus) traceRecord(now int64) TraceRecord {
	h := a.Beam.Pos.H
	return TraceRecord{
		Clock:  now,
		Pos:    a.Beam.Pos,
		Owner:  a.Bus.Owner(h),
		Value:  a.Bus.Value(h),
		CopPC:  a.Copper.PC(),
		Copper: a.Scheduler.ID(scheduler.Cop),
		Blit:   a.Scheduler.ID(scheduler.Blt),
	}
}

// TraceDigest hashes a stream of trace records, so two runs can be
// compared cycle for cycle without keeping the records around.
type TraceDigest struct {
	h   hash.Hash64
	buf [32]byte
	n   int64
}

// NewTraceDigest returns an empty digest.
func NewTraceDigest() *TraceDigest {
	return &TraceDigest{h: xxhash.New()}
}

// Record adds r to the digest. It can be passed to Agnus.Trace.
func (d *TraceDigest) Record(r TraceRecord) {
	b := d.buf[:]
	binary.LittleEndian.PutUint64(b[0:], uint64(r.Clock))
	binary.LittleEndian.PutUint16(b[8:], uint16(r.Pos.V))
	binary.LittleEndian.PutUint16(b[10:], uint16(r.Pos.H))
	b[12] = uint8(r.Owner)
	binary.LittleEndian.PutUint16(b[13:], r.Value)
	binary.LittleEndian.PutUint32(b[15:], r.CopPC)
	b[19] = uint8(r.Copper)
	b[20] = uint8(r.Blit)
	d.h.Write(b[:21])
	d.n++
}

// Sum returns the digest of the records so far.
func (d *TraceDigest) Sum() uint64 {
	return d.h.Sum64()
}

// Len returns the number of records so far.
func (d *TraceDigest) Len() int64 {
	return d.n
}
