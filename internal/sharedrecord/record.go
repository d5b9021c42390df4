package sharedrecord

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/aeroflybridge/bridge/internal/bridgeerr"
	"github.com/aeroflybridge/bridge/internal/catalog"
)

// Record is the mapped shared-memory region plus the layout needed to
// address it. It is single-writer (the sim thread, via BeginTick/EndTick/
// Store*) and many-reader (transports building JSON, and out-of-process
// consumers that open the same named region directly).
type Record struct {
	name   string
	layout Layout
	mem    []byte // mmap'd region, len == layout.TotalSize
	fd     int

	startedAt time.Time
}

// regionDir returns the directory backing the named shared region. On
// Linux, /dev/shm is a tmpfs and is the conventional location for named
// shared memory; elsewhere it falls back to the OS temp directory.
func regionDir() string {
	if st, err := os.Stat("/dev/shm"); err == nil && st.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// OpenOrCreate implements spec.md §4.2 open_or_create: creates the named
// region if absent, maps it read-write, and zero-initializes the whole
// region, including one left behind by an earlier run. size is computed from the catalog-derived Layout, not
// supplied by the caller, so the region is always exactly large enough.
func OpenOrCreate(name string, layout Layout) (*Record, error) {
	path := filepath.Join(regionDir(), name)

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0o666)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.ResourceUnavailable, "sharedrecord.OpenOrCreate", err)
	}

	size := layout.TotalSize
	if err := unix.Ftruncate(fd, size); err != nil {
		_ = unix.Close(fd)
		return nil, bridgeerr.New(bridgeerr.ResourceUnavailable, "sharedrecord.OpenOrCreate", err)
	}

	mem, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, bridgeerr.New(bridgeerr.ResourceUnavailable, "sharedrecord.OpenOrCreate", err)
	}

	clear(mem)
	r := &Record{name: name, layout: layout, mem: mem, fd: fd, startedAt: time.Now()}
	binary.LittleEndian.PutUint32(r.mem[offLayoutVersion:], LayoutVersion)
	return r, nil
}

// Close unmaps the region and closes the backing descriptor. It does not
// remove the file, matching spec.md §8 S6: reopening under the same name
// afterwards must succeed without "already exists" semantics because the
// content, not the name, is what's being released from this process.
func (r *Record) Close() error {
	if r.mem != nil {
		if err := unix.Munmap(r.mem); err != nil {
			return fmt.Errorf("sharedrecord: munmap: %w", err)
		}
		r.mem = nil
	}
	return unix.Close(r.fd)
}

// BeginTick marks the record invalid, bumps update_counter, and stamps the
// current monotonic microsecond timestamp. Readers must not trust the
// payload until EndTick sets data_valid back to 1.
func (r *Record) BeginTick() {
	binary.LittleEndian.PutUint32(r.mem[offDataValid:], 0)
	ctr := binary.LittleEndian.Uint32(r.mem[offUpdateCounter:])
	binary.LittleEndian.PutUint32(r.mem[offUpdateCounter:], ctr+1)
	us := uint64(time.Since(r.startedAt) / time.Microsecond)
	binary.LittleEndian.PutUint64(r.mem[offTimestampUs:], us)
}

// EndTick publishes the tick's writes to readers.
func (r *Record) EndTick() {
	binary.LittleEndian.PutUint32(r.mem[offDataValid:], 1)
}

// TimestampUs, DataValid, UpdateCounter read the header. Callers
// implementing the consistency gate from spec.md §4.2 should read
// DataValid, then the payload, then DataValid again, and discard the read
// if either observation was 0 or they disagreed.
func (r *Record) TimestampUs() uint64   { return binary.LittleEndian.Uint64(r.mem[offTimestampUs:]) }
func (r *Record) DataValid() uint32     { return binary.LittleEndian.Uint32(r.mem[offDataValid:]) }
func (r *Record) UpdateCounter() uint32 { return binary.LittleEndian.Uint32(r.mem[offUpdateCounter:]) }
func (r *Record) LayoutVersionField() uint32 {
	return binary.LittleEndian.Uint32(r.mem[offLayoutVersion:])
}

// StoreScalar writes values[index] = v.
func (r *Record) StoreScalar(index int, v float64) {
	off := r.layout.ArrayBaseOffset + int64(index)*r.layout.StrideBytes
	binary.LittleEndian.PutUint64(r.mem[off:], floatBits(v))
}

// Scalar reads values[index].
func (r *Record) Scalar(index int) float64 {
	off := r.layout.ArrayBaseOffset + int64(index)*r.layout.StrideBytes
	return bitsFloat(binary.LittleEndian.Uint64(r.mem[off:]))
}

func (r *Record) sideOffset(index int) (sideField, bool) {
	sf, ok := r.layout.sideFields[index]
	return sf, ok
}

// StoreVec2/StoreVec3/StoreVec4 write to a variable's typed side field.
// values[index] is left untouched: per spec.md §3 invariant (iii), non-
// scalar variables must not mirror into the scalar array.
func (r *Record) StoreVec2(index int, x, y float64) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint64(r.mem[sf.offset:], floatBits(x))
	binary.LittleEndian.PutUint64(r.mem[sf.offset+8:], floatBits(y))
}

func (r *Record) StoreVec3(index int, x, y, z float64) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint64(r.mem[sf.offset:], floatBits(x))
	binary.LittleEndian.PutUint64(r.mem[sf.offset+8:], floatBits(y))
	binary.LittleEndian.PutUint64(r.mem[sf.offset+16:], floatBits(z))
}

func (r *Record) StoreVec4(index int, x, y, z, w float64) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint64(r.mem[sf.offset:], floatBits(x))
	binary.LittleEndian.PutUint64(r.mem[sf.offset+8:], floatBits(y))
	binary.LittleEndian.PutUint64(r.mem[sf.offset+16:], floatBits(z))
	binary.LittleEndian.PutUint64(r.mem[sf.offset+24:], floatBits(w))
}

// Vec2/Vec3/Vec4 read a variable's typed side field.
func (r *Record) Vec2(index int) (float64, float64) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return 0, 0
	}
	return bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset:])),
		bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset+8:]))
}

func (r *Record) Vec3(index int) (float64, float64, float64) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return 0, 0, 0
	}
	return bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset:])),
		bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset+8:])),
		bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset+16:]))
}

func (r *Record) Vec4(index int) (float64, float64, float64, float64) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return 0, 0, 0, 0
	}
	return bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset:])),
		bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset+8:])),
		bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset+16:])),
		bitsFloat(binary.LittleEndian.Uint64(r.mem[sf.offset+24:]))
}

// StoreString writes a sanitized, NUL-terminated string into a variable's
// side field, per spec.md §3 invariant (iv). The sanitation itself lives
// in internal/dispatch (Sanitize) so there is exactly one place that
// implements it; this method trusts its input is already sanitized and
// only enforces the field's fixed capacity.
func (r *Record) StoreString(index int, s string) {
	sf, ok := r.sideOffset(index)
	if !ok {
		return
	}
	max := int(sf.length) - 1
	if len(s) > max {
		s = s[:max]
	}
	buf := r.mem[sf.offset : sf.offset+sf.length]
	clear(buf)
	copy(buf, s)
}

// String reads a variable's NUL-terminated side field back as a Go string.
func (r *Record) String(index int) string {
	sf, ok := r.sideOffset(index)
	if !ok {
		return ""
	}
	buf := r.mem[sf.offset : sf.offset+sf.length]
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

// Layout exposes the computed memory plan, e.g. for descriptor generation.
func (r *Record) Layout() Layout { return r.layout }

func floatBits(f float64) uint64 { return math.Float64bits(f) }
func bitsFloat(b uint64) float64 { return math.Float64frombits(b) }

// NumVariables is a convenience accessor used by tests and the dispatch
// package to bound-check logical indices.
func NumVariables(cat *catalog.Catalog) int { return cat.NumVariables() }
