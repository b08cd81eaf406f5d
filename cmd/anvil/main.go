package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/voxelforge/anvil/pkg/anvil"
	"github.com/voxelforge/anvil/pkg/region"
)

func main() {
	// Parse command line arguments
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		fmt.Println("Usage: anvil <command> [args...]")
		fmt.Println("\nCommands:")
		fmt.Println("  stat <region-file>                 Show region file occupancy")
		fmt.Println("  get <world-dir> <x> <z>            Print a chunk as JSON")
		fmt.Println("  put <world-dir> <x> <z> <json>     Write a chunk from a JSON file")
		os.Exit(1)
	}

	// Handle commands
	cmd := args[0]
	switch cmd {
	case "stat":
		if len(args) < 2 {
			log.Fatal("Usage: anvil stat <region-file>")
		}
		handleStat(args[1])

	case "get":
		if len(args) < 4 {
			log.Fatal("Usage: anvil get <world-dir> <x> <z>")
		}
		handleGet(args[1], parseCoord(args[2]), parseCoord(args[3]))

	case "put":
		if len(args) < 5 {
			log.Fatal("Usage: anvil put <world-dir> <x> <z> <json-file>")
		}
		handlePut(args[1], parseCoord(args[2]), parseCoord(args[3]), args[4])

	default:
		log.Fatalf("Unknown command: %s", cmd)
	}
}

func parseCoord(s string) int32 {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		log.Fatalf("Invalid chunk coordinate %q: %v", s, err)
	}
	return int32(v)
}

func handleStat(path string) {
	if _, err := os.Stat(path); err != nil {
		log.Fatalf("Error opening region file: %v", err)
	}

	r, err := region.Open(path)
	if err != nil {
		log.Fatalf("Error opening region file: %v", err)
	}
	defer r.Close()

	stats := r.Stat()
	fmt.Printf("Chunks:        %d\n", stats.Chunks)
	fmt.Printf("Total sectors: %d\n", stats.TotalSectors)
	fmt.Printf("Used sectors:  %d\n", stats.UsedSectors)
	fmt.Printf("File length:   %d bytes\n", int64(stats.TotalSectors)*4096)
}

func handleGet(dir string, x, z int32) {
	chunks := anvil.NewChunkProvider(dir)

	var tag map[string]any
	if err := chunks.LoadChunk(x, z, &tag); err != nil {
		log.Fatalf("Error loading chunk: %v", err)
	}

	out, err := json.MarshalIndent(tag, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding chunk: %v", err)
	}
	fmt.Println(string(out))
}

func handlePut(dir string, x, z int32, jsonPath string) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatalf("Error reading input: %v", err)
	}

	var tag map[string]any
	if err := json.Unmarshal(raw, &tag); err != nil {
		log.Fatalf("Error parsing input: %v", err)
	}

	chunks := anvil.NewChunkProvider(dir)
	if err := chunks.SaveChunk(x, z, tag); err != nil {
		log.Fatalf("Error saving chunk: %v", err)
	}

	fmt.Printf("Saved chunk %d,%d\n", x, z)
}
