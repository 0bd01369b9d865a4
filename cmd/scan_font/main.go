package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SeakMengs/Signfy/pkg/signfy"
)

func main() {
	fontDir := flag.String("dir", "fonts", "directory holding the signature font files")
	outputFile := flag.String("out", signfy.DefaultFontMetadataPath, "where to write the font metadata")
	flag.Parse()

	fonts, err := signfy.ScanFontDir(*fontDir)
	if err != nil {
		log.Fatalf("Failed to scan font directory: %v", err)
	}

	data, err := json.MarshalIndent(fonts, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	// The file can be read by the owner (you), read by users in the file's group, and read by anyone else on the system
	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		log.Fatalf("Failed to write JSON file: %v", err)
	}

	fmt.Printf("Saved metadata for %d fonts to %q\n", len(fonts), *outputFile)

	if missing := signfy.MissingFonts(fonts); len(missing) > 0 {
		fmt.Printf("No font file found for %d signature fonts, previews in them will fail:\n", len(missing))
		for _, f := range missing {
			fmt.Printf("  - %s\n", f)
		}
	}
}
