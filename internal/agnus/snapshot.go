package agnus

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/google/brotli/go/cbrotli"

	"github.com/thelolagemann/goagnus/internal/types"
	"github.com/thelolagemann/goagnus/internal/types/registers"
	"github.com/thelolagemann/goagnus/pkg/log"
)

// Snapshot buffer layout. The header is little-endian.
//
//	0  magic    [4]byte "AGNS"
//	4  version  uint16
//	6  flags    uint16
//	8  length   uint32, length of the uncompressed payload
//	12 checksum uint64, xxhash of the stored payload
//	20 payload
const (
	snapshotVersion    = 1
	snapshotHeaderSize = 20

	flagCompressed = 1 << 0

	compressionQuality = 5
)

var snapshotMagic = [4]byte{'A', 'G', 'N', 'S'}

var (
	// ErrTruncated is returned for snapshots that are shorter than
	// their header says, or whose payload ends early.
	ErrTruncated = errors.New("snapshot: truncated")
	// ErrBadMagic is returned for buffers that are not snapshots.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnsupportedVersion is returned for snapshots written by an
	// incompatible version.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrChecksum is returned when the payload does not match its
	// checksum.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrCompression is returned when the payload cannot be
	// decompressed.
	ErrCompression = errors.New("snapshot: bad compression")
	// ErrMismatch is returned for snapshots of a chipset with a
	// different revision, video standard or memory size.
	ErrMismatch = errors.New("snapshot: chipset mismatch")
)

// Save returns a snapshot of the chipset and its memory.
func (a *Agnus) Save() ([]byte, error) {
	st := types.NewState()
	a.save(st)
	payload := st.Bytes()
	length := len(payload)

	var flags uint16
	if a.compress {
		enc, err := cbrotli.Encode(payload, cbrotli.WriterOptions{Quality: compressionQuality})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		payload = enc
		flags |= flagCompressed
	}

	b := make([]byte, snapshotHeaderSize, snapshotHeaderSize+len(payload))
	copy(b, snapshotMagic[:])
	binary.LittleEndian.PutUint16(b[4:], snapshotVersion)
	binary.LittleEndian.PutUint16(b[6:], flags)
	binary.LittleEndian.PutUint32(b[8:], uint32(length))
	binary.LittleEndian.PutUint64(b[12:], xxhash.Sum64(payload))
	b = append(b, payload...)

	a.trace.Tracef(log.Snapshot, "saved %d bytes (%d uncompressed)", len(b), length)
	return b, nil
}

// Verify checks the framing of a snapshot and returns its
// uncompressed payload.
func Verify(b []byte) ([]byte, error) {
	if len(b) < snapshotHeaderSize {
		return nil, ErrTruncated
	}
	if [4]byte(b[:4]) != snapshotMagic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(b[4:]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	flags := binary.LittleEndian.Uint16(b[6:])
	length := int(binary.LittleEndian.Uint32(b[8:]))
	sum := binary.LittleEndian.Uint64(b[12:])

	payload := b[snapshotHeaderSize:]
	if xxhash.Sum64(payload) != sum {
		return nil, ErrChecksum
	}

	if flags&flagCompressed != 0 {
		dec, err := cbrotli.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		if len(dec) != length {
			return nil, fmt.Errorf("%w: %d of %d bytes", ErrCompression, len(dec), length)
		}
		payload = dec
	}
	if len(payload) != length {
		return nil, ErrTruncated
	}
	return payload, nil
}

// Load restores the chipset from a snapshot made by Save. If the
// snapshot is rejected the chipset is left as it was.
func (a *Agnus) Load(b []byte) error {
	payload, err := Verify(b)
	if err != nil {
		return err
	}

	backup := types.NewState()
	a.save(backup)

	st := types.StateFromBytes(payload)
	err = a.load(st)
	if err == nil && st.Remaining() != 0 {
		err = fmt.Errorf("%w: %d bytes left over", ErrMismatch, st.Remaining())
	}
	if err != nil {
		if rerr := a.load(types.StateFromBytes(backup.Bytes())); rerr != nil {
			a.log.Errorf("agnus: restoring state: %v", rerr)
		}
		return err
	}

	a.trace.Tracef(log.Snapshot, "loaded %d bytes at %s", len(b), a.Beam.Pos)
	return nil
}

// save writes the whole chipset, memory included.
func (a *Agnus) save(st *types.State) {
	st.Write8(uint8(a.revision))
	st.Write8(uint8(a.video))
	st.Write32(uint32(a.mem.Size()))

	a.Scheduler.Save(st)
	a.Beam.Save(st)
	a.Bus.Save(st)
	a.Interrupts.Save(st)
	a.Copper.Save(st)
	a.Blitter.Save(st)

	st.Write16(a.bplcon0)
	st.Write16(a.ddfstrt)
	st.Write16(a.ddfstop)
	st.Write16(a.diwstrt)
	st.Write16(a.diwstop)
	st.Write16(uint16(a.bpl1mod))
	st.Write16(uint16(a.bpl2mod))
	for _, p := range a.bplpt {
		st.Write32(p)
	}
	st.WriteBool(a.bplConfig.Enabled)
	st.Write8(uint8(a.bplConfig.BPU))
	st.WriteBool(a.bplConfig.Hires)
	st.Write16(a.bplConfig.DDFSTRT)
	st.Write16(a.bplConfig.DDFSTOP)
	st.Write8(a.bplFetched)

	for n := range a.sprpt {
		st.Write32(a.sprpt[n])
		st.Write16(a.sprpos[n])
		st.Write16(a.sprctl[n])
		st.Write16(uint16(a.sprVStop[n]))
		st.WriteBool(a.sprActive[n])
	}
	for ch := range a.audlc {
		st.Write32(a.audlc[ch])
		st.Write32(a.audpt[ch])
	}
	st.Write32(a.dskpt)

	st.Write16(uint16(len(a.changes)))
	for _, c := range a.changes {
		st.WriteInt64(c.At)
		st.Write16(c.Reg)
		st.Write16(c.Value)
	}

	a.mem.Save(st)
}

// load reads the chipset written by save, and rebuilds the slot
// tables from it.
func (a *Agnus) load(st *types.State) error {
	rev, video, size := types.Revision(st.Read8()), types.Video(st.Read8()), int(st.Read32())
	if err := st.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if rev != a.revision || video != a.video || size != a.mem.Size() {
		return fmt.Errorf("%w: %v/%v/%d, want %v/%v/%d", ErrMismatch,
			rev, video, size, a.revision, a.video, a.mem.Size())
	}

	a.Scheduler.Load(st)
	a.Beam.Load(st)
	a.Bus.Load(st)
	a.Interrupts.Load(st)
	a.Copper.Load(st)
	a.Blitter.Load(st)

	a.bplcon0 = st.Read16()
	a.ddfstrt = st.Read16()
	a.ddfstop = st.Read16()
	a.diwstrt = st.Read16()
	a.diwstop = st.Read16()
	a.bpl1mod = int16(st.Read16())
	a.bpl2mod = int16(st.Read16())
	for p := range a.bplpt {
		a.bplpt[p] = st.Read32()
	}
	a.bplConfig.Enabled = st.ReadBool()
	a.bplConfig.BPU = int(st.Read8())
	a.bplConfig.Hires = st.ReadBool()
	a.bplConfig.DDFSTRT = st.Read16()
	a.bplConfig.DDFSTOP = st.Read16()
	a.bplFetched = st.Read8()

	for n := range a.sprpt {
		a.sprpt[n] = st.Read32()
		a.sprpos[n] = st.Read16()
		a.sprctl[n] = st.Read16()
		a.sprVStop[n] = int(st.Read16())
		a.sprActive[n] = st.ReadBool()
	}
	for ch := range a.audlc {
		a.audlc[ch] = st.Read32()
		a.audpt[ch] = st.Read32()
	}
	a.dskpt = st.Read32()

	a.changes = a.changes[:0]
	for i, n := 0, int(st.Read16()); i < n && st.Err() == nil; i++ {
		a.changes = append(a.changes, regChange{
			At:    st.ReadInt64(),
			Reg:   registers.Address(st.Read16()),
			Value: st.Read16(),
		})
	}

	a.mem.Load(st)
	if err := st.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	a.Slots.UpdateDAS(a.Bus.DMACON())
	a.Slots.UpdateBPL(a.bplConfig)
	return nil
}
