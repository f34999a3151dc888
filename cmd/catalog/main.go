package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/beautypos/workstation/internal/catalog"
)

func main() {
	// CLI flags
	path := flag.String("file", "", "Catalog JSON file to validate (default: built-in catalog)")
	summary := flag.Bool("summary", false, "Print the stock summary instead of the product list")
	flag.Parse()

	// Fall back to environment variables
	if *path == "" {
		*path = os.Getenv("CATALOG_PATH")
	}

	cat := catalog.Default()
	if *path != "" {
		loaded, err := catalog.Load(*path)
		if err != nil {
			log.Fatalf("Invalid catalog: %v", err)
		}
		cat = loaded
		log.Printf("Catalog %s is valid (%d products)", *path, cat.Len())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	var out interface{} = cat.Products()
	if *summary {
		out = cat.Summary()
	}
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Unable to write catalog: %v", err)
	}

	if low := cat.LowStock(); len(low) > 0 {
		fmt.Fprintf(os.Stderr, "%d product(s) below reorder threshold:\n", len(low))
		for _, p := range low {
			fmt.Fprintf(os.Stderr, "  %s %s (stock %d, min %d)\n", p.Barcode, p.Name, p.Stock, p.MinStock)
		}
	}
}
