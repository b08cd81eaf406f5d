package region

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// File wraps an os.File with the big-endian primitives the region format is
// built from. A File is owned exclusively by the Region that opened it and
// is not safe for concurrent use (see Region).
type File struct {
	file *os.File
}

// OpenFile opens a file with the given path and flags
func OpenFile(path string, flag int, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	return &File{file: f}, nil
}

// Name returns the name of the underlying file
func (f *File) Name() string {
	return f.file.Name()
}

// Seek sets the offset for the next Read or Write on file to offset
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

// Size returns the current length of the file in bytes
func (f *File) Size() (int64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stating file: %w", err)
	}
	return info.Size(), nil
}

// SetLength truncates or zero-extends the file to exactly n bytes
func (f *File) SetLength(n int64) error {
	return f.file.Truncate(n)
}

// ReadUint32 reads a big-endian uint32 from the current position
func (f *File) ReadUint32() (uint32, error) {
	var val uint32
	if err := binary.Read(f.file, binary.BigEndian, &val); err != nil {
		return 0, err
	}
	return val, nil
}

// WriteUint32 writes a big-endian uint32 at the current position
func (f *File) WriteUint32(val uint32) error {
	return binary.Write(f.file, binary.BigEndian, val)
}

// ReadUint8 reads a single byte from the current position
func (f *File) ReadUint8() (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(f.file, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads n bytes from the current position
func (f *File) ReadBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(f.file, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteBytes writes bytes at the current position
func (f *File) WriteBytes(b []byte) error {
	_, err := f.file.Write(b)
	return err
}

// Sync commits the current contents of the file to stable storage
func (f *File) Sync() error {
	return f.file.Sync()
}

// Close closes the file
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil
	return err
}
