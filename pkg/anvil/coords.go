package anvil

import "fmt"

// RegionAt returns the region coordinate holding the given global chunk
// coordinate. The arithmetic shift floors toward negative infinity, so chunk
// -1 lands in region -1.
func RegionAt(chunkX, chunkZ int32) (int32, int32) {
	return chunkX >> 5, chunkZ >> 5
}

// LocalAt returns the chunk's coordinate within its region, each in [0,31].
func LocalAt(chunkX, chunkZ int32) (int, int) {
	return int(chunkX & 31), int(chunkZ & 31)
}

// RegionFileName returns the file name for a region coordinate.
func RegionFileName(regionX, regionZ int32) string {
	return fmt.Sprintf("r.%d.%d.mca", regionX, regionZ)
}
