package region

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ChunkMetadata is one region header slot: where a chunk's data lives in the
// file and when it was last written. A slot with Sectors == 0 is empty; the
// other fields are only meaningful when the slot is occupied.
type ChunkMetadata struct {
	// SectorIndex is the first sector of the chunk's data.
	SectorIndex uint32
	// Sectors is the amount of sectors used to store the chunk.
	Sectors uint8
	// LastModified is the last write time in Unix seconds, truncated to 32 bits.
	LastModified uint32
}

// IsEmpty reports whether the slot holds no chunk.
func (m ChunkMetadata) IsEmpty() bool {
	return m.Sectors == 0
}

// slotIndex maps local chunk coordinates to the header slot ordering.
// Coordinates outside [0,31] are a caller bug, caught before any I/O.
func slotIndex(x, z int) (int, error) {
	if x < 0 || x > 31 || z < 0 || z > 31 {
		return 0, fmt.Errorf("local chunk coordinate out of range: %d,%d", x, z)
	}
	return x + z*32, nil
}

// readHeader reads the first 8KB of the file: 1024 big-endian offset words
// followed by 1024 big-endian timestamp words, both ordered by slot index.
func readHeader(f *File) ([regionChunks]ChunkMetadata, error) {
	var metadata [regionChunks]ChunkMetadata

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return metadata, fmt.Errorf("seeking to header: %w", err)
	}

	raw, err := f.ReadBytes(regionHeaderLength)
	if err != nil {
		return metadata, fmt.Errorf("reading header: %w", err)
	}

	for i := 0; i < regionChunks; i++ {
		offset := binary.BigEndian.Uint32(raw[i*4:])
		timestamp := binary.BigEndian.Uint32(raw[(regionChunks+i)*4:])

		metadata[i] = ChunkMetadata{
			SectorIndex:  offset >> 8,
			Sectors:      uint8(offset & 0xFF),
			LastModified: timestamp,
		}
	}

	return metadata, nil
}

// persistEntry writes a single slot's two header words: the packed offset
// word at slot*4, then the timestamp one sector later in the second header
// sector. The rest of the header is untouched on disk.
func persistEntry(f *File, slot int, m ChunkMetadata) error {
	if _, err := f.Seek(int64(slot)*4, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to header slot: %w", err)
	}

	offset := m.SectorIndex<<8 | uint32(m.Sectors)
	if err := f.WriteUint32(offset); err != nil {
		return fmt.Errorf("writing offset word: %w", err)
	}

	if _, err := f.Seek(sectorLength-4, io.SeekCurrent); err != nil {
		return fmt.Errorf("seeking to timestamp slot: %w", err)
	}

	if err := f.WriteUint32(m.LastModified); err != nil {
		return fmt.Errorf("writing timestamp word: %w", err)
	}

	return nil
}
