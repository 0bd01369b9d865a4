package signfy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/sfnt"
)

// SignatureFont is one of the faces a signature can be drawn with. The name is sent
// verbatim to the signing backend, which maps it to a font resource.
type SignatureFont string

const (
	FontPacifico         SignatureFont = "Pacifico"
	FontRoboto           SignatureFont = "Roboto"
	FontDancingScript    SignatureFont = "Dancing Script"
	FontIndieFlower      SignatureFont = "Indie Flower"
	FontLora             SignatureFont = "Lora"
	FontPlayfairDisplay  SignatureFont = "Playfair Display"
	FontQuicksand        SignatureFont = "Quicksand"
	FontOrbitron         SignatureFont = "Orbitron"
	FontCaveat           SignatureFont = "Caveat"
	FontZeyada           SignatureFont = "Zeyada"
	FontGreatVibes       SignatureFont = "Great Vibes"
	FontRaleway          SignatureFont = "Raleway"
	FontAnton            SignatureFont = "Anton"
	FontFiraSans         SignatureFont = "Fira Sans"
	FontUbuntu           SignatureFont = "Ubuntu"
	FontShadowsIntoLight SignatureFont = "Shadows Into Light"
	FontKalam            SignatureFont = "Kalam"
	FontNunito           SignatureFont = "Nunito"
	FontComfortaa        SignatureFont = "Comfortaa"
	FontSignika          SignatureFont = "Signika"
)

var SupportedFonts = []SignatureFont{
	FontPacifico, FontRoboto, FontDancingScript, FontIndieFlower, FontLora, FontPlayfairDisplay,
	FontQuicksand, FontOrbitron, FontCaveat, FontZeyada, FontGreatVibes, FontRaleway,
	FontAnton, FontFiraSans, FontUbuntu, FontShadowsIntoLight, FontKalam, FontNunito,
	FontComfortaa, FontSignika,
}

const (
	DefaultFont     = FontPacifico
	DefaultFontSize = 24
	MinFontSize     = 8
	MaxFontSize     = 100
)

var (
	ErrUnsupportedFont = errors.New("unsupported signature font")
	// The font is supported but its file was not found by the last font scan
	ErrFontNotInstalled = errors.New("signature font is not installed")
)

func ParseFont(name string) (SignatureFont, error) {
	for _, f := range SupportedFonts {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFont, name)
}

func (f SignatureFont) Valid() bool {
	_, err := ParseFont(string(f))
	return err == nil
}

// CSSClass is the class name the front-end uses for the face, e.g. "dancing-script".
func (f SignatureFont) CSSClass() string {
	return strings.ToLower(strings.ReplaceAll(string(f), " ", "-"))
}

type FontMetadata struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func getFontMetadataByPath(fontPath string) (*FontMetadata, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	font, err := sfnt.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	name, err := font.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return nil, fmt.Errorf("retrieving font name: %w", err)
	}

	return &FontMetadata{
		Name: name,
		Path: fontPath,
	}, nil
}

// Scan through the directory to process .ttf and .otf files.
func ScanFontDir(dir string) ([]FontMetadata, error) {
	var fonts []FontMetadata

	err := filepath.Walk(dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(info.Name()))
		if ext != ".ttf" && ext != ".otf" {
			return nil
		}

		meta, err := getFontMetadataByPath(path)
		if err != nil {
			log.Printf("Skipping %q: %v", path, err)
			return nil
		}

		fonts = append(fonts, *meta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fonts, nil
}

// MissingFonts lists the supported signature fonts that have no entry in fonts.
func MissingFonts(fonts []FontMetadata) []SignatureFont {
	have := make(map[string]bool, len(fonts))
	for _, f := range fonts {
		have[f.Name] = true
	}

	var missing []SignatureFont
	for _, f := range SupportedFonts {
		if !have[string(f)] {
			missing = append(missing, f)
		}
	}
	return missing
}

// List the available font family and its path
func GetAvailableFonts(path string) ([]*FontMetadata, error) {
	var fonts []*FontMetadata

	if path == "" {
		path = DefaultFontMetadataPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fonts, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &fonts); err != nil {
		return fonts, fmt.Errorf("unmarshalling %s: %w", path, err)
	}

	return fonts, nil
}

type fontKey struct {
	name  string
	style canvas.FontStyle
}

type FontLoader struct {
	Cfg            Config
	AvailableFonts []*FontMetadata

	mu sync.Mutex
	// parsed font files, loaded once per name and style
	families map[fontKey]*canvas.FontFamily
}

func NewFontLoader(cfg Config) (*FontLoader, error) {
	fonts, err := GetAvailableFonts(cfg.FontMetadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load font metadata: %w", err)
	}

	return &FontLoader{
		Cfg:            cfg,
		AvailableFonts: fonts,
	}, nil
}

func (fl *FontLoader) GetAvailableFontMetadataByName(fontName string) (*FontMetadata, error) {
	for _, font := range fl.AvailableFonts {
		if font.Name == fontName {
			return font, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFontNotInstalled, fontName)
}

func (fl *FontLoader) LoadFont(fontName string, fontStyle canvas.FontStyle) (*canvas.FontFamily, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	key := fontKey{name: fontName, style: fontStyle}
	if fontFamily, ok := fl.families[key]; ok {
		return fontFamily, nil
	}

	fontMetadata, err := fl.GetAvailableFontMetadataByName(fontName)
	if err != nil {
		return nil, fmt.Errorf("failed to get font metadata: %w", err)
	}

	fontFamily := canvas.NewFontFamily(fontMetadata.Name)
	if err := fontFamily.LoadFontFile(fontMetadata.Path, fontStyle); err != nil {
		return nil, fmt.Errorf("failed to load font file: %w", err)
	}

	if fl.families == nil {
		fl.families = make(map[fontKey]*canvas.FontFamily)
	}
	fl.families[key] = fontFamily
	return fontFamily, nil
}
