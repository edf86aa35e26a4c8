package parser

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/khawarahemad/metadata-expert/core"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0.00 B"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{5242880, "5.00 MB"},
		{1073741824, "1.00 GB"},
		{1099511627776, "1.00 TB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	// One translucent pixel keeps the encoder from dropping the alpha
	// channel, so the decoded color model stays NRGBA.
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestBasicInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path, 12, 8)

	info, err := BasicInfo(path)
	if err != nil {
		t.Fatalf("BasicInfo: %v", err)
	}

	checks := map[string]string{
		"Filename":     "test.png",
		"File Format":  "PNG",
		"Image Width":  "12 px",
		"Image Height": "8 px",
		"Image Mode":   "NRGBA",
	}
	for key, want := range checks {
		got, ok := info.Get(key)
		if !ok {
			t.Errorf("missing field %q", key)
			continue
		}
		if got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if _, ok := info.Get("File Size"); !ok {
		t.Error("missing File Size")
	}
	if _, ok := info.Get("Modified Date"); !ok {
		t.Error("missing Modified Date")
	}
}

func TestBasicInfoMissingFile(t *testing.T) {
	if _, err := BasicInfo("does-not-exist.png"); err == nil {
		t.Error("BasicInfo on a missing file should fail")
	}
}

func TestExifDataNoExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.png")
	writeTestPNG(t, path, 2, 2)

	fields := ExifData(path)
	if note, ok := fields.Get("Note"); !ok || note != "No EXIF data found" {
		t.Errorf("expected no-EXIF note, got %v", fields.Map())
	}
}

func TestAllMetadataSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path, 4, 4)

	m, err := AllMetadata(path)
	if err != nil {
		t.Fatalf("AllMetadata: %v", err)
	}

	want := []string{core.SectionBasic, core.SectionExif, core.SectionProperties}
	if !reflect.DeepEqual(m.Sections(), want) {
		t.Errorf("Sections = %v, want %v", m.Sections(), want)
	}
	if m.Format != "PNG" {
		t.Errorf("Format = %q, want PNG", m.Format)
	}
}

func TestAllMetadataUnsupported(t *testing.T) {
	if _, err := AllMetadata("notes.txt"); err == nil {
		t.Error("AllMetadata should reject unsupported extensions")
	}
}

func TestPropertiesAnimatedGIF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anim.gif")

	palette := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < 3; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gif.EncodeAll(f, g); err != nil {
		f.Close()
		t.Fatalf("encode gif: %v", err)
	}
	f.Close()

	props := Properties(path)
	if v, _ := props.Get("Is Animated"); v != "Yes" {
		t.Errorf("Is Animated = %q, want Yes", v)
	}
	if v, _ := props.Get("Number of Frames"); v != "3" {
		t.Errorf("Number of Frames = %q, want 3", v)
	}
}

func TestFindImages(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "b.png"), 2, 2)
	writeTestPNG(t, filepath.Join(dir, "a.png"), 2, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeTestPNG(t, filepath.Join(sub, "c.png"), 2, 2)

	got := FindImages(dir)
	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(sub, "c.png"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindImages = %v, want %v", got, want)
	}
}
