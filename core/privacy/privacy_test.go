package privacy

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestEncodeDecodeMetadata(t *testing.T) {
	in := map[string]string{
		"Artist":   "Jane Doe",
		"Make":     "Canon",
		"Model":    "EOS R5",
		"DateTime": "2024:06:01 12:00:00",
	}

	encoded, err := EncodeMetadata(in, "secret")
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	if encoded == "" {
		t.Fatal("EncodeMetadata returned empty string")
	}

	out, err := DecodeMetadata(encoded, "secret")
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: got %v, want %v", out, in)
	}
}

func TestDecodeMetadataGarbage(t *testing.T) {
	if _, err := DecodeMetadata("not base64 at all!!!", ""); err == nil {
		t.Error("DecodeMetadata should fail on invalid input")
	}
}

func TestCategories(t *testing.T) {
	got := Categories()
	want := []string{CategoryGPS, CategoryDateTime, CategoryCamera, CategoryPersonal, CategoryAll}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}
}

func TestDefaultCategoriesExcludeCamera(t *testing.T) {
	for _, c := range DefaultCategories {
		if c == CategoryCamera {
			t.Error("camera identity must not be removed by default")
		}
	}
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestStripPNGDropsTextChunks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writeTestPNG(t, src)

	// Inject a tEXt chunk before IEND to simulate embedded metadata.
	f, err := os.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := readPNGChunks(f)
	f.Close()
	if err != nil {
		t.Fatalf("readPNGChunks: %v", err)
	}
	withMeta := make([]pngChunk, 0, len(chunks)+1)
	for _, c := range chunks {
		if c.typ == "IEND" {
			withMeta = append(withMeta, pngChunk{typ: "tEXt", data: []byte("Comment\x00secret note")})
		}
		withMeta = append(withMeta, c)
	}
	if err := writePNGChunks(src, withMeta); err != nil {
		t.Fatalf("writePNGChunks: %v", err)
	}

	dest := filepath.Join(dir, "out.png")
	if err := StripTo(src, dest); err != nil {
		t.Fatalf("StripTo: %v", err)
	}

	f, err = os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	stripped, err := readPNGChunks(f)
	f.Close()
	if err != nil {
		t.Fatalf("readPNGChunks after strip: %v", err)
	}
	for _, c := range stripped {
		if pngMetaChunks[c.typ] {
			t.Errorf("metadata chunk %s survived strip", c.typ)
		}
	}

	// The stripped file must still be a decodable image.
	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("stripped PNG no longer decodes: %v", err)
	}
}

func TestStripJPEGDropsCommentSegment(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.jpg")

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	segs, err := readJPEGSegments(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readJPEGSegments: %v", err)
	}

	// Splice a COM segment after SOI.
	withMeta := make([]jpegSegment, 0, len(segs)+1)
	withMeta = append(withMeta, segs[0], jpegSegment{marker: 0xFE, data: []byte("secret comment")})
	withMeta = append(withMeta, segs[1:]...)
	if err := writeJPEGSegments(src, withMeta); err != nil {
		t.Fatalf("writeJPEGSegments: %v", err)
	}

	dest := filepath.Join(dir, "out.jpg")
	if err := StripTo(src, dest); err != nil {
		t.Fatalf("StripTo: %v", err)
	}

	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("secret comment")) {
		t.Error("comment segment survived strip")
	}
	if _, err := jpeg.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("stripped JPEG no longer decodes: %v", err)
	}
}

func TestReadJPEGSegmentsScanData(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	segs, err := readJPEGSegments(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readJPEGSegments: %v", err)
	}
	if segs[0].marker != markerSOI {
		t.Errorf("first segment marker = %#x, want SOI", segs[0].marker)
	}

	sawSOS, sawScan := false, false
	for _, seg := range segs {
		if seg.marker == markerSOS {
			sawSOS = true
		}
		if seg.marker == markerScan && len(seg.data) > 0 {
			sawScan = true
		}
	}
	if !sawSOS || !sawScan {
		t.Errorf("sawSOS=%v sawScan=%v, want both", sawSOS, sawScan)
	}

	// Re-assembling the segments must reproduce the original bytes.
	dir := t.TempDir()
	out := filepath.Join(dir, "roundtrip.jpg")
	if err := writeJPEGSegments(out, segs); err != nil {
		t.Fatalf("writeJPEGSegments: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, buf.Bytes()) {
		t.Error("segment round trip altered the file")
	}
}

func TestSecureDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.jpg")
	if err := os.WriteFile(path, []byte("sensitive image bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SecureDelete(path); err != nil {
		t.Fatalf("SecureDelete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after secure delete: %v", err)
	}
}

func TestSecureDeleteMissingFile(t *testing.T) {
	if err := SecureDelete("never-existed.jpg"); err == nil {
		t.Error("SecureDelete on a missing file should fail")
	}
}

func TestStripUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.gif")
	// Minimal GIF header so format detection resolves.
	if err := os.WriteFile(src, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := StripTo(src, filepath.Join(dir, "out.gif")); err == nil {
		t.Error("StripTo should refuse formats without strip support")
	}
}

func TestReportForCleanImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.png")
	writeTestPNG(t, path)

	report := ReportFor(path)
	if report.RiskLevel != "LOW" {
		t.Errorf("risk level = %s, want LOW", report.RiskLevel)
	}
	if report.FieldsFound != 0 {
		t.Errorf("fields found = %d, want 0", report.FieldsFound)
	}
	if report.HasGPS {
		t.Error("clean image reported as having GPS")
	}
}
