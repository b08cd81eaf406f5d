package region

import "fmt"

// ChunkNotFoundError is returned when the requested slot is empty.
type ChunkNotFoundError struct {
	X, Z int
}

func (e *ChunkNotFoundError) Error() string {
	return fmt.Sprintf("chunk %d,%d not found in region", e.X, e.Z)
}

// LengthExceedsMaximumError signals a chunk record whose length violates the
// format's limits. On the load path this means the file is corrupted; it is
// surfaced as-is, never truncated or repaired. On the save path it means the
// encoded chunk is too large to store, and nothing has been written.
type LengthExceedsMaximumError struct {
	Length  uint32
	Maximum uint32
}

func (e *LengthExceedsMaximumError) Error() string {
	return fmt.Sprintf("chunk length %d exceeds maximum %d", e.Length, e.Maximum)
}

// UnsupportedCompressionError signals a record with an unknown compression
// scheme byte: either corruption or a format evolution this code predates.
type UnsupportedCompressionError struct {
	Scheme uint8
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("unsupported compression scheme %d", e.Scheme)
}
