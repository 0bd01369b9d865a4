package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SeakMengs/Signfy/pkg/signfy"
)

// Prints the geometry the service would store for a PDF and, given a rendered canvas
// and a pointer, the placement a drop there would produce.
func main() {
	pdfFilePath := flag.String("pdf", "", "PDF file to inspect")
	canvasW := flag.Float64("canvas-width", 0, "rendered canvas width in pixels")
	canvasH := flag.Float64("canvas-height", 0, "rendered canvas height in pixels")
	pointerX := flag.Float64("x", 0, "pointer x relative to the canvas")
	pointerY := flag.Float64("y", 0, "pointer y relative to the canvas")
	fontSize := flag.Float64("font-size", signfy.DefaultFontSize, "signature font size")
	flag.Parse()

	if *pdfFilePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	src, err := os.Open(*pdfFilePath)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	geometry, err := signfy.ReadPageGeometry(src)
	if err != nil {
		log.Fatalf("Failed to read page geometry: %v", err)
	}

	fmt.Printf("PDF Page Count: %d\n", geometry.PageCount)
	fmt.Printf("Page Size: %.2f x %.2f pt\n", geometry.Size.Width, geometry.Size.Height)

	if *canvasW <= 0 || *canvasH <= 0 {
		return
	}

	placement, err := signfy.MapPointer(
		signfy.Rect{Width: *canvasW, Height: *canvasH},
		geometry.Size,
		signfy.Point{X: *pointerX, Y: *pointerY},
		*fontSize,
	)
	if err != nil {
		log.Fatalf("Failed to map pointer: %v", err)
	}

	fmt.Printf("Placement: x=%d y=%d\n", placement.X, placement.Y)
}
