package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/hwaldner/pinout/pkg/cache"
	"github.com/hwaldner/pinout/pkg/errors"
)

var testSource = []byte(`LABELS, Pin, Type, Group, Function
DRAW
ANCHOR, 100, 100
PINSET, RIGHT, PACKED, LEFT, TOP, 10, 60, 0, 40, 4, 6
PIN, , , , VCC
PIN, , , , GND
`)

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := Options{
		Source:  testSource,
		Formats: []string{FormatSVG, FormatJSON},
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "VCC") {
		t.Errorf("SVG artifact incomplete:\n%s", svg)
	}
	if !json.Valid(result.Artifacts[FormatJSON]) {
		t.Error("JSON artifact is not valid JSON")
	}

	if result.Stats.CommandCount != 6 {
		t.Errorf("CommandCount = %d, want 6", result.Stats.CommandCount)
	}
	if result.Stats.StepCount != 4 {
		t.Errorf("StepCount = %d, want 4", result.Stats.StepCount)
	}
	if result.Stats.PrimitiveCount == 0 {
		t.Error("PrimitiveCount = 0")
	}
	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.CacheInfo.ArtifactHit {
		t.Error("first run should not hit the cache")
	}
}

func TestExecuteCanvasDefaults(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	// Without overrides the document falls back to A4 landscape at 300 DPI.
	result, err := runner.Execute(context.Background(), Options{Source: testSource})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.CanvasWidthPx <= result.CanvasHeightPx {
		t.Errorf("default canvas not landscape: %gx%g", result.CanvasWidthPx, result.CanvasHeightPx)
	}

	// Page and DPI options seed the document configuration.
	result, err = runner.Execute(context.Background(), Options{
		Source: testSource,
		Page:   "A5-P",
		DPI:    150,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := 148.0 * 150 / 25.4
	if math.Abs(result.CanvasWidthPx-want) > 0.01 {
		t.Errorf("A5-P width = %g, want %g", result.CanvasWidthPx, want)
	}
}

func TestExecuteFontDefault(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Source:     testSource,
		FontFamily: "Inter",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if svg := string(result.Artifacts[FormatSVG]); !strings.Contains(svg, `font-family="Inter`) {
		t.Errorf("seeded font family missing from SVG:\n%s", svg)
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	opts := Options{Source: testSource}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("second run should hit the artifact cache")
	}
	if string(second.Artifacts[FormatSVG]) != string(first.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute failed: %v", err)
	}
	if third.CacheInfo.ArtifactHit {
		t.Error("refresh run should not hit the cache")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := runner.Execute(context.Background(), Options{
		Source:  testSource,
		Formats: []string{"gif"},
	}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExecuteDocumentError(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	source := []byte("LABELS, Pin\nDRAW\nPIN, , ,\n")

	_, err := runner.Execute(context.Background(), Options{Source: source})
	if !errors.Is(err, errors.ErrCodeLayout) {
		t.Errorf("expected LAYOUT_ERROR for pin outside a pin-set, got %v", err)
	}
	if idx := errors.CommandIndex(err); idx != 2 {
		t.Errorf("command index = %d, want 2", idx)
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png", "pdf", "json"}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := ValidateFormat("webp"); err == nil {
		t.Error("invalid format accepted")
	}
}
