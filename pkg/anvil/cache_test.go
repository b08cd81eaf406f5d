package anvil

import (
	"errors"
	"testing"
)

func TestProviderCacheRoundTrip(t *testing.T) {
	cache := NewProviderCache(t.TempDir(), 0)
	defer cache.Close()

	want := testChunk{XPos: 4, ZPos: 2, Name: "cached"}
	if err := cache.SaveChunk(4, 2, want); err != nil {
		t.Fatalf("saving chunk: %v", err)
	}

	var got testChunk
	if err := cache.LoadChunk(4, 2, &got); err != nil {
		t.Fatalf("loading chunk: %v", err)
	}
	if got != want {
		t.Errorf("wrong chunk: got %+v, want %+v", got, want)
	}

	// Both calls hit the same region; exactly one engine is cached.
	if len(cache.regions) != 1 {
		t.Errorf("wrong cache size: got %d, want 1", len(cache.regions))
	}
}

func TestProviderCacheEviction(t *testing.T) {
	cache := NewProviderCache(t.TempDir(), 2)
	defer cache.Close()

	// Three distinct regions through a two-slot cache.
	for i := int32(0); i < 3; i++ {
		if err := cache.SaveChunk(i*32, 0, testChunk{XPos: i * 32, Name: "fill"}); err != nil {
			t.Fatalf("saving chunk in region %d: %v", i, err)
		}
	}

	if len(cache.regions) != 2 {
		t.Errorf("wrong cache size: got %d, want 2", len(cache.regions))
	}
	if _, ok := cache.regions["r.0.0.mca"]; ok {
		t.Error("least recently used region not evicted")
	}

	// The evicted region reopens transparently.
	var got testChunk
	if err := cache.LoadChunk(0, 0, &got); err != nil {
		t.Fatalf("loading chunk from evicted region: %v", err)
	}
	if got.XPos != 0 {
		t.Errorf("wrong chunk after reopen: %+v", got)
	}
}

func TestProviderCacheLoadMissing(t *testing.T) {
	cache := NewProviderCache(t.TempDir(), 0)
	defer cache.Close()

	var got testChunk
	err := cache.LoadChunk(100, 100, &got)

	var notFound *RegionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("wrong error: got %v, want RegionNotFoundError", err)
	}
	if notFound.RegionX != 3 || notFound.RegionZ != 3 {
		t.Errorf("wrong region coordinates in error: %+v", notFound)
	}
}

func TestProviderCacheClose(t *testing.T) {
	cache := NewProviderCache(t.TempDir(), 0)

	if err := cache.SaveChunk(0, 0, testChunk{Name: "before close"}); err != nil {
		t.Fatalf("saving chunk: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("closing cache: %v", err)
	}
	if len(cache.regions) != 0 {
		t.Errorf("cache not empty after close: %d entries", len(cache.regions))
	}

	// The cache stays usable; regions are reopened on demand.
	var got testChunk
	if err := cache.LoadChunk(0, 0, &got); err != nil {
		t.Fatalf("loading chunk after close: %v", err)
	}
	if got.Name != "before close" {
		t.Errorf("wrong chunk after close: %+v", got)
	}
	cache.Close()
}
