package cli

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
	"github.com/matzehuels/jumpmat/pkg/pipeline"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"", "mat"},
		{"mat", "mat"},
		{"out/mat.png", "out/mat"},
		{"out/mat.jpg", "out/mat"},
		{"out/mat.tif", "out/mat"},
		{"out/mat.obj", "out/mat"},
		{"out/mat.v2", "out/mat.v2"},
		{"prints/landing", "prints/landing"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestArtifactExt(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{pipeline.FormatPNG, "png"},
		{pipeline.FormatJPEG, "jpg"},
		{pipeline.FormatTIFF, "tiff"},
		{pipeline.FormatBMP, "bmp"},
		{pipeline.FormatOBJ, "obj"},
		{pipeline.FormatMTL, "mtl"},
		{pipeline.FormatTXT, "txt"},
		{pipeline.FormatJSON, "json"},
	}
	for _, tt := range tests {
		if got := artifactExt(tt.format); got != tt.want {
			t.Errorf("artifactExt(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "mat")
	paths, err := writeArtifacts(base, []string{"txt", "jpeg"}, map[string][]byte{
		"txt":  []byte("spec"),
		"jpeg": []byte("jpeg"),
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error = %v", err)
	}
	want := []string{base + ".txt", base + ".jpg"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i, p := range paths {
		if p != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, p, want[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("stat %s: %v", p, err)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "mat")
	_, err := runCommand(t, "render", "--no-cache", "--ppm", "200", "--speckle=false",
		"-f", "png,obj,mtl,txt,json", "-o", base+".png")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{"png", "obj", "mtl", "txt", "json"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	data, err := os.ReadFile(base + ".png")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.Bounds(), image.Rect(0, 0, 660, 180); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}

	obj, _ := os.ReadFile(base + ".obj")
	if !strings.Contains(string(obj), "mtllib mat.mtl") {
		t.Errorf("obj does not reference mat.mtl:\n%s", obj)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "render", "--no-cache", "-f", "svg", "-o", filepath.Join(t.TempDir(), "mat"))
	if err == nil {
		t.Error("render -f svg: expected error")
	}
}

func TestRenderCommandMissingConfig(t *testing.T) {
	_, err := runCommand(t, "render", "--no-cache", "-c", filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("render with missing config: expected error")
	}
}

func TestSpecCommand(t *testing.T) {
	out, err := runCommand(t, "spec")
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	for _, want := range []string{"JUMP MAT SPECIFICATION", "Fiducial markers", "3960 x 1080 px"} {
		if !strings.Contains(out, want) {
			t.Errorf("spec output missing %q", want)
		}
	}
}

func TestSpecCommandOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.txt")
	if _, err := runCommand(t, "spec", "--labels", "inline", "-o", path); err != nil {
		t.Fatalf("spec -o: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "JUMP MAT SPECIFICATION") {
		t.Error("spec file missing title")
	}
}

func TestSpecCommandInvalidLabels(t *testing.T) {
	if _, err := runCommand(t, "spec", "--labels", "sideways"); err == nil {
		t.Error("spec --labels sideways: expected error")
	}
}

func TestMarkersCommandList(t *testing.T) {
	out, err := runCommand(t, "markers")
	if err != nil {
		t.Fatalf("markers: %v", err)
	}
	for _, want := range []string{"ID", "Pattern", "far", "near"} {
		if !strings.Contains(out, want) {
			t.Errorf("markers output missing %q", want)
		}
	}
}

func TestMarkersCommandWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.png")
	if _, err := runCommand(t, "markers", "--id", "3", "--size", "60", "--quiet", "6", "-o", path); err != nil {
		t.Fatalf("markers --id: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	want := fiducial.Encode(3, 60, 6)
	if img.Bounds() != want.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), want.Bounds())
	}
	for y := 0; y < 72; y += 5 {
		for x := 0; x < 72; x += 5 {
			r, _, _, _ := img.At(x, y).RGBA()
			if uint8(r>>8) != want.GrayAt(x, y).Y {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, r>>8, want.GrayAt(x, y).Y)
			}
		}
	}
}

func TestMarkersCommandInvalidSize(t *testing.T) {
	if _, err := runCommand(t, "markers", "--id", "1", "--size", "0", "-o", filepath.Join(t.TempDir(), "m.png")); err == nil {
		t.Error("markers --size 0: expected error")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mat.toml")
	if _, err := runCommand(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}
	if cfg.TotalLength != config.Reference().TotalLength {
		t.Errorf("TotalLength = %g, want %g", cfg.TotalLength, config.Reference().TotalLength)
	}

	if _, err := runCommand(t, "config", "init", path); err == nil {
		t.Error("config init over existing file: expected error")
	}
	if _, err := runCommand(t, "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	out, err := runCommand(t, "config", "show", "-c", path, "--ppm", "600")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"1980 x 540 px", "landing", "centimeter"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q", want)
		}
	}

	out, err = runCommand(t, "config", "show", "--toml")
	if err != nil {
		t.Fatalf("config show --toml: %v", err)
	}
	if _, err := config.Decode(strings.NewReader(out)); err != nil {
		t.Errorf("config show --toml does not round-trip: %v", err)
	}
}
