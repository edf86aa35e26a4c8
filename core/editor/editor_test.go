package editor

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestEditableFields(t *testing.T) {
	fields := EditableFields()
	sort.Strings(fields)

	want := map[string]bool{
		"Artist": true, "Copyright": true, "DateTime": true,
		"DateTimeDigitized": true, "DateTimeOriginal": true,
		"ImageDescription": true, "LensModel": true, "Make": true,
		"Model": true, "Software": true, "UserComment": true,
	}
	if len(fields) != len(want) {
		t.Fatalf("EditableFields = %v, want %d entries", fields, len(want))
	}
	for _, name := range fields {
		if !want[name] {
			t.Errorf("unexpected editable field %q", name)
		}
	}
}

func TestEditExifNoUpdates(t *testing.T) {
	// An empty update map must not touch the file at all.
	if err := EditExif("does-not-exist.jpg", nil); err != nil {
		t.Errorf("EditExif with no updates = %v, want nil", err)
	}
}

func TestRemoveExifKeepsImageDecodable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(src, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "clean.jpg")
	if err := RemoveExif(src, dest); err != nil {
		t.Fatalf("RemoveExif: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output no longer decodes: %v", err)
	}
}

func TestCreateBackupNaming(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(src, []byte("original bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := CreateBackup(src)
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if want := filepath.Join(dir, "photo_backup.jpg"); backup != want {
		t.Errorf("backup path = %q, want %q", backup, want)
	}
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original bytes" {
		t.Errorf("backup content = %q", data)
	}
}

func TestRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(src, []byte("before"), 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := CreateBackup(src)
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}

	if err := os.WriteFile(src, []byte("mangled"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RestoreBackup(src, backup); err != nil {
		t.Fatalf("RestoreBackup: %v", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "before" {
		t.Errorf("restored content = %q, want before", data)
	}
}

func TestExportCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(src, []byte("image bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "copy.jpg")
	if err := ExportCopy(src, dest); err != nil {
		t.Fatalf("ExportCopy: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image bytes" {
		t.Errorf("copied content = %q", data)
	}
}
