// Package anvil provides chunk storage over a directory of region files,
// addressing chunks by their global coordinates.
package anvil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voxelforge/anvil/pkg/region"
)

// RegionNotFoundError is returned by loads that address a region file which
// does not exist. Loading never creates region files.
type RegionNotFoundError struct {
	RegionX, RegionZ int32
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("region %d,%d not found", e.RegionX, e.RegionZ)
}

// ChunkProvider loads and saves chunks in a folder of region files.
//
// Every call opens a fresh region engine and closes it before returning; no
// file handles are kept between calls. ProviderCache offers the same
// contract with a bounded cache of open regions.
type ChunkProvider struct {
	dir  string
	opts []region.Option
}

// NewChunkProvider creates a provider over the given region folder. Options
// are forwarded to every region it opens.
func NewChunkProvider(dir string, opts ...region.Option) *ChunkProvider {
	return &ChunkProvider{dir: dir, opts: opts}
}

// LoadChunk reads the chunk at the given global coordinates and decodes its
// NBT payload into v. It fails with *RegionNotFoundError when the region
// file does not exist.
func (p *ChunkProvider) LoadChunk(chunkX, chunkZ int32, v any) error {
	r, err := p.openRegion(chunkX, chunkZ, false)
	if err != nil {
		return err
	}
	defer r.Close()

	x, z := LocalAt(chunkX, chunkZ)
	return r.ReadChunk(x, z, v)
}

// SaveChunk encodes v and stores it at the given global coordinates,
// creating the region folder and file as needed.
func (p *ChunkProvider) SaveChunk(chunkX, chunkZ int32, v any) error {
	r, err := p.openRegion(chunkX, chunkZ, true)
	if err != nil {
		return err
	}
	defer r.Close()

	x, z := LocalAt(chunkX, chunkZ)
	return r.WriteChunk(x, z, v)
}

// RegionStat reports the occupancy of one region file. It fails with
// *RegionNotFoundError when the file does not exist.
func (p *ChunkProvider) RegionStat(regionX, regionZ int32) (region.Stats, error) {
	path := filepath.Join(p.dir, RegionFileName(regionX, regionZ))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return region.Stats{}, &RegionNotFoundError{RegionX: regionX, RegionZ: regionZ}
		}
		return region.Stats{}, fmt.Errorf("stating region file: %w", err)
	}

	r, err := region.Open(path, p.opts...)
	if err != nil {
		return region.Stats{}, err
	}
	defer r.Close()

	return r.Stat(), nil
}

// openRegion resolves the region file for a chunk coordinate and opens it.
// When create is false a missing file is an error, not an empty region.
func (p *ChunkProvider) openRegion(chunkX, chunkZ int32, create bool) (*region.Region, error) {
	regionX, regionZ := RegionAt(chunkX, chunkZ)
	path := filepath.Join(p.dir, RegionFileName(regionX, regionZ))

	if !create {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, &RegionNotFoundError{RegionX: regionX, RegionZ: regionZ}
			}
			return nil, fmt.Errorf("stating region file: %w", err)
		}
	} else if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating region folder: %w", err)
	}

	return region.Open(path, p.opts...)
}
