// Package resource loads intrinsic dimensions of image and icon files.
//
// The layout engine only needs width and height to compute placement;
// embedding the actual bytes into the output is the emitter's job. Raster
// formats are probed through the standard image registry, vector files
// through a lightweight SVG header scan.
package resource

import (
	"encoding/xml"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hwaldner/pinout/pkg/errors"
)

// Loader resolves a resource path to its intrinsic pixel dimensions.
type Loader interface {
	Dimensions(path string) (width, height float64, err error)
}

// FileLoader reads resources from the filesystem, resolving relative paths
// against Base.
type FileLoader struct {
	Base string
}

// Dimensions probes the file header for its pixel size. Missing or
// undecodable files fail with a RESOURCE_ERROR.
func (l FileLoader) Dimensions(path string) (float64, float64, error) {
	full := path
	if l.Base != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.Base, path)
	}

	f, err := os.Open(full)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeResource, err, "open resource %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(full), ".svg") {
		return svgDimensions(f, path)
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeResource, err, "decode resource %s", path)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

// svgDimensions scans for the root <svg> element and reads its width and
// height attributes, falling back to the viewBox when absent.
func svgDimensions(r io.Reader, path string) (float64, float64, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, errors.Wrap(errors.ErrCodeResource, err, "scan svg %s", path)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return 0, 0, errors.New(errors.ErrCodeResource, "%s: root element is not <svg>", path)
		}

		var w, h float64
		var viewBox string
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				w = svgLength(a.Value)
			case "height":
				h = svgLength(a.Value)
			case "viewBox":
				viewBox = a.Value
			}
		}
		if w > 0 && h > 0 {
			return w, h, nil
		}
		if parts := strings.Fields(viewBox); len(parts) == 4 {
			vw, errW := strconv.ParseFloat(parts[2], 64)
			vh, errH := strconv.ParseFloat(parts[3], 64)
			if errW == nil && errH == nil && vw > 0 && vh > 0 {
				return vw, vh, nil
			}
		}
		return 0, 0, errors.New(errors.ErrCodeResource, "%s: svg declares no usable dimensions", path)
	}
}

// svgLength parses an SVG length, ignoring a trailing unit suffix.
func svgLength(v string) float64 {
	v = strings.TrimSpace(v)
	i := len(v)
	for i > 0 && !isDigit(v[i-1]) && v[i-1] != '.' {
		i--
	}
	f, err := strconv.ParseFloat(v[:i], 64)
	if err != nil {
		return 0
	}
	return f
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
