package signfy

import (
	"fmt"
	"os"
)

const DefaultFontMetadataPath = "font_metadata.json"

type Config struct {
	// A path to json where it store font name and path to the font file
	FontMetadataPath string
	// Directory where rendered previews are written when a caller asks for a file
	OutputDir string
}

func NewDefaultConfig() Config {
	cfg := Config{
		FontMetadataPath: DefaultFontMetadataPath,
		OutputDir:        fmt.Sprintf("%s/signfy/preview", os.TempDir()),
	}

	// 0755 mean owner can read, write and execute
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
	}

	return cfg
}
