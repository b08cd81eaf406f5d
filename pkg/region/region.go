// Package region implements the on-disk region file format: container files
// holding up to 1024 chunks of NBT data in 4096-byte sectors, indexed by a
// fixed two-sector header.
package region

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Tnze/go-mc/nbt"
)

const (
	// regionChunks is the amount of chunks in a region (32x32).
	regionChunks = 1024
	// regionHeaderLength is the region header length in bytes: 1024 offset
	// words followed by 1024 timestamp words.
	regionHeaderLength = 8 * regionChunks
	// sectorLength is the allocation granule of the data area.
	sectorLength = 4096
	// maxChunkLength is the format's hard cap on a chunk record.
	maxChunkLength = 256 * sectorLength
	// maxChunkSectors is the largest sector count a header slot can record.
	maxChunkSectors = 255

	schemeGzip = 1
	schemeZlib = 2
)

// Region is one open region file: a 32x32 group of chunks. It owns its
// backing file, header array and sector map exclusively for its lifetime.
//
// A Region performs no internal locking. It must not be driven from more
// than one goroutine at a time, and two Regions opened against the same path
// will race on allocation and corrupt the sector map; callers serialize all
// access to a given region path.
type Region struct {
	file   *File
	meta   [regionChunks]ChunkMetadata
	used   *sectorTracker
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Region.
type Option func(*Region)

// WithClock sets the time source used for last-modified timestamps.
// The default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(r *Region) {
		r.clock = clock
	}
}

// WithLogger sets the logger. The Region logs allocation decisions at Debug
// level only.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Region) {
		r.logger = logger
	}
}

// Open opens or creates the region file at path. A file shorter than the
// header is zero-extended to exactly the header length, which is the
// canonical form of an empty region.
func Open(path string, opts ...Option) (*Region, error) {
	file, err := OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	r := &Region{
		file:   file,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.load(); err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

// load reads the header and rebuilds the sector map from it.
func (r *Region) load() error {
	size, err := r.file.Size()
	if err != nil {
		return err
	}

	if size < regionHeaderLength {
		if err := r.file.SetLength(regionHeaderLength); err != nil {
			return fmt.Errorf("extending file to header length: %w", err)
		}
		size = regionHeaderLength
	}

	meta, err := readHeader(r.file)
	if err != nil {
		return err
	}
	r.meta = meta

	r.used = newSectorTracker(uint32(size / sectorLength))
	for _, m := range r.meta {
		if m.IsEmpty() {
			continue
		}
		r.used.MarkRange(m.SectorIndex, m.Sectors, true)
	}

	return nil
}

// ReadChunk reads the chunk at local coordinates x,z and decodes its NBT
// payload into v. It returns *ChunkNotFoundError when the slot is empty and
// *LengthExceedsMaximumError or *UnsupportedCompressionError when the record
// violates the format; corrupted records are never repaired or truncated.
func (r *Region) ReadChunk(x, z int, v any) error {
	slot, err := slotIndex(x, z)
	if err != nil {
		return err
	}

	m := r.meta[slot]
	if m.IsEmpty() {
		return &ChunkNotFoundError{X: x, Z: z}
	}

	if _, err := r.file.Seek(int64(m.SectorIndex)*sectorLength, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to chunk: %w", err)
	}

	length, err := r.file.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading chunk length: %w", err)
	}

	maximum := uint32(m.Sectors) * sectorLength
	if maximum > maxChunkLength {
		maximum = maxChunkLength
	}
	if length > maximum {
		return &LengthExceedsMaximumError{Length: length, Maximum: maximum}
	}
	if length == 0 {
		return fmt.Errorf("chunk %d,%d has a zero-length record", x, z)
	}

	scheme, err := r.file.ReadUint8()
	if err != nil {
		return fmt.Errorf("reading compression scheme: %w", err)
	}

	compressed, err := r.file.ReadBytes(int(length - 1))
	if err != nil {
		return fmt.Errorf("reading chunk data: %w", err)
	}

	var reader io.ReadCloser
	switch scheme {
	case schemeGzip:
		reader, err = gzip.NewReader(bytes.NewReader(compressed))
	case schemeZlib:
		reader, err = zlib.NewReader(bytes.NewReader(compressed))
	default:
		return &UnsupportedCompressionError{Scheme: scheme}
	}
	if err != nil {
		return fmt.Errorf("decompressing chunk: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("decompressing chunk: %w", err)
	}

	if err := nbt.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding chunk nbt: %w", err)
	}

	return nil
}

// WriteChunk encodes v as zlib-compressed NBT and stores it at local
// coordinates x,z, then persists the slot's header entry. A chunk that
// exceeds the format's size cap fails with *LengthExceedsMaximumError before
// anything is written. Readers still accept gzip records for compatibility,
// but writes always use zlib.
func (r *Region) WriteChunk(x, z int, v any) error {
	slot, err := slotIndex(x, z)
	if err != nil {
		return err
	}

	data, err := nbt.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding chunk nbt: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte(schemeZlib)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compressing chunk: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing chunk: %w", err)
	}

	// Record length counts the 4 length bytes, the scheme byte and the
	// compressed payload.
	length := uint32(buf.Len()) + 4

	if length > maxChunkLength || length/sectorLength+1 > maxChunkSectors {
		return &LengthExceedsMaximumError{Length: length, Maximum: maxChunkLength}
	}

	start, sectors, err := r.findPlace(slot, length)
	if err != nil {
		return err
	}

	if _, err := r.file.Seek(int64(start)*sectorLength, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to chunk sectors: %w", err)
	}
	if err := r.file.WriteUint32(length - 4); err != nil {
		return fmt.Errorf("writing chunk length: %w", err)
	}
	if err := r.file.WriteBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("writing chunk data: %w", err)
	}

	// Zero padding out to the next sector boundary. A record ending exactly
	// on a boundary still gets a full padding sector.
	padding := sectorLength - length%sectorLength
	if err := r.file.WriteBytes(make([]byte, padding)); err != nil {
		return fmt.Errorf("writing sector padding: %w", err)
	}

	m := ChunkMetadata{
		SectorIndex:  start,
		Sectors:      sectors,
		LastModified: uint32(r.clock().Unix()),
	}
	r.meta[slot] = m

	if err := persistEntry(r.file, slot, m); err != nil {
		return fmt.Errorf("persisting header entry: %w", err)
	}

	return nil
}

// findPlace picks the sector run for a record of the given length, updating
// the sector map. Allocation always reserves length/sectorLength+1 sectors,
// one more than strictly needed when the length divides evenly; existing
// files depend on this layout, so it is kept for compatibility.
func (r *Region) findPlace(slot int, length uint32) (uint32, uint8, error) {
	needed := uint8(length/sectorLength + 1)
	current := r.meta[slot]

	// Same size as the existing allocation: overwrite in place.
	if current.Sectors == needed {
		return current.SectorIndex, needed, nil
	}

	if !current.IsEmpty() {
		r.used.MarkRange(current.SectorIndex, current.Sectors, false)
	}

	start, trailing, ok := r.used.FirstFit(needed)
	if ok {
		r.used.MarkRange(start, needed, true)
		r.logger.Debug("chunk placed in gap",
			"slot", slot, "sector", start, "sectors", needed)
		return start, needed, nil
	}

	// No gap is big enough: extend the file by the shortfall, reusing the
	// free run at the tail if there is one.
	total := r.used.Len()
	grow := uint32(needed) - trailing
	if err := r.file.SetLength(int64(total+grow) * sectorLength); err != nil {
		return 0, 0, fmt.Errorf("extending region file: %w", err)
	}
	r.used.Grow(grow)

	start = total - trailing
	r.used.MarkRange(start, needed, true)
	r.logger.Debug("region file extended",
		"slot", slot, "sector", start, "sectors", needed, "grown", grow)

	return start, needed, nil
}

// Metadata returns the header entry for local coordinates x,z.
func (r *Region) Metadata(x, z int) (ChunkMetadata, error) {
	slot, err := slotIndex(x, z)
	if err != nil {
		return ChunkMetadata{}, err
	}
	return r.meta[slot], nil
}

// Stats summarizes a region file's occupancy.
type Stats struct {
	Chunks       int    // occupied header slots
	TotalSectors uint32 // sectors within file bounds, header included
	UsedSectors  uint32 // occupied sectors, header included
}

// Stat reports the region's current occupancy.
func (r *Region) Stat() Stats {
	s := Stats{
		TotalSectors: r.used.Len(),
		UsedSectors:  r.used.Used(),
	}
	for _, m := range r.meta {
		if !m.IsEmpty() {
			s.Chunks++
		}
	}
	return s
}

// Close closes the backing file.
func (r *Region) Close() error {
	return r.file.Close()
}
