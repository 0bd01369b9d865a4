package signfy

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageGeometry is what a loaded document contributes to coordinate mapping.
type PageGeometry struct {
	// Size of the first page, used as the scale reference for every page
	Size      Size `json:"size"`
	PageCount uint `json:"pageCount"`
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func GetPageCount(rs io.ReadSeeker) (uint, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	count, err := api.PageCount(rs, pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}

	return uint(count), nil
}

// GetPdfPageSize returns the width and height of page (1-based) in PDF units.
func GetPdfPageSize(rs io.ReadSeeker, page int) (float64, float64, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	dims, err := api.PageDims(rs, pdfConfig())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	if page < 1 || page > len(dims) {
		return 0, 0, fmt.Errorf("page %d out of range, pdf has %d pages", page, len(dims))
	}

	d := dims[page-1]
	return d.Width, d.Height, nil
}

// ReadPageGeometry reads the first page's box and the page count of a PDF.
func ReadPageGeometry(rs io.ReadSeeker) (PageGeometry, error) {
	count, err := GetPageCount(rs)
	if err != nil {
		return PageGeometry{}, err
	}
	if count < 1 {
		return PageGeometry{}, errors.New("pdf has no pages")
	}

	width, height, err := GetPdfPageSize(rs, 1)
	if err != nil {
		return PageGeometry{}, err
	}

	size := Size{Width: width, Height: height}
	if !size.validPage() {
		return PageGeometry{}, ErrInvalidGeometry
	}

	return PageGeometry{Size: size, PageCount: count}, nil
}
