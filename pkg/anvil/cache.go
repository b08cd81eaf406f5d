package anvil

import (
	"container/list"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/voxelforge/anvil/pkg/region"
)

// DefaultMaxOpenRegions is the cache bound used when none is given.
const DefaultMaxOpenRegions = 8

// ProviderCache is a ChunkProvider variant that keeps a bounded LRU cache of
// open region engines instead of opening a fresh one per call.
//
// All access goes through a single mutex, so every region engine is only
// ever driven by one caller at a time, and one engine instance serves all
// traffic for its region path while cached. Evicted and closed engines are
// reopened transparently on the next access. Close the cache when done.
type ProviderCache struct {
	dir     string
	opts    []region.Option
	maxOpen int

	mu      sync.Mutex
	regions map[string]*cachedRegion
	lru     *list.List // front = most recently used
}

type cachedRegion struct {
	key     string
	region  *region.Region
	element *list.Element
}

// NewProviderCache creates a caching provider over the given region folder
// holding at most maxOpen region files open. A maxOpen of zero or less uses
// DefaultMaxOpenRegions.
func NewProviderCache(dir string, maxOpen int, opts ...region.Option) *ProviderCache {
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenRegions
	}
	return &ProviderCache{
		dir:     dir,
		opts:    opts,
		maxOpen: maxOpen,
		regions: make(map[string]*cachedRegion),
		lru:     list.New(),
	}
}

// LoadChunk reads the chunk at the given global coordinates and decodes its
// NBT payload into v. It fails with *RegionNotFoundError when the region
// file does not exist.
func (c *ProviderCache) LoadChunk(chunkX, chunkZ int32, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	regionX, regionZ := RegionAt(chunkX, chunkZ)
	r, err := c.acquire(regionX, regionZ, false)
	if err != nil {
		return err
	}

	x, z := LocalAt(chunkX, chunkZ)
	return r.ReadChunk(x, z, v)
}

// SaveChunk encodes v and stores it at the given global coordinates,
// creating the region folder and file as needed.
func (c *ProviderCache) SaveChunk(chunkX, chunkZ int32, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	regionX, regionZ := RegionAt(chunkX, chunkZ)
	r, err := c.acquire(regionX, regionZ, true)
	if err != nil {
		return err
	}

	x, z := LocalAt(chunkX, chunkZ)
	return r.WriteChunk(x, z, v)
}

// RegionStat reports the occupancy of one region file. It fails with
// *RegionNotFoundError when the file does not exist.
func (c *ProviderCache) RegionStat(regionX, regionZ int32) (region.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.acquire(regionX, regionZ, false)
	if err != nil {
		return region.Stats{}, err
	}
	return r.Stat(), nil
}

// Close closes every cached region engine. The cache is empty but still
// usable afterwards.
func (c *ProviderCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for key, cached := range c.regions {
		if err := cached.region.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing region %s: %w", key, err)
		}
	}
	c.regions = make(map[string]*cachedRegion)
	c.lru.Init()

	return firstErr
}

// acquire returns the cached engine for a region coordinate, opening and
// caching it on a miss. Callers hold c.mu.
func (c *ProviderCache) acquire(regionX, regionZ int32, create bool) (*region.Region, error) {
	key := RegionFileName(regionX, regionZ)

	if cached, ok := c.regions[key]; ok {
		c.lru.MoveToFront(cached.element)
		return cached.region, nil
	}

	path := filepath.Join(c.dir, key)
	if !create {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, &RegionNotFoundError{RegionX: regionX, RegionZ: regionZ}
			}
			return nil, fmt.Errorf("stating region file: %w", err)
		}
	} else if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating region folder: %w", err)
	}

	r, err := region.Open(path, c.opts...)
	if err != nil {
		return nil, err
	}

	if err := c.evictFor(key); err != nil {
		r.Close()
		return nil, err
	}

	cached := &cachedRegion{key: key, region: r}
	cached.element = c.lru.PushFront(cached)
	c.regions[key] = cached

	return r, nil
}

// evictFor closes least recently used regions until there is room for one
// more entry.
func (c *ProviderCache) evictFor(key string) error {
	for len(c.regions) >= c.maxOpen {
		oldest := c.lru.Back()
		if oldest == nil {
			return nil
		}
		cached := oldest.Value.(*cachedRegion)

		c.lru.Remove(oldest)
		delete(c.regions, cached.key)

		if err := cached.region.Close(); err != nil {
			return fmt.Errorf("closing evicted region %s: %w", cached.key, err)
		}
	}
	return nil
}
