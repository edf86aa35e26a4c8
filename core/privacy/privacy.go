// Package privacy removes or reports sensitive metadata: GPS positions,
// timestamps, camera identity, and personal fields.
package privacy

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	exif "github.com/dsoprea/go-exif/v3"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/sirupsen/logrus"

	"github.com/khawarahemad/metadata-expert/core/parser"
)

// Sensitive metadata categories.
const (
	CategoryGPS      = "GPS"
	CategoryDateTime = "DateTime"
	CategoryCamera   = "Camera"
	CategoryPersonal = "Personal"
	CategoryAll      = "All"
)

// sensitiveTag locates one sensitive tag inside the EXIF structure.
type sensitiveTag struct {
	ifdPath string
	tagID   uint16
	name    string
}

// sensitiveFields lists the tags removed per category. GPS is handled by
// dropping the whole GPS sub-IFD pointer rather than tag by tag.
var sensitiveFields = map[string][]sensitiveTag{
	CategoryDateTime: {
		{"IFD0", 0x0132, "DateTime"},
		{"IFD/Exif", 0x9003, "DateTimeOriginal"},
		{"IFD/Exif", 0x9004, "DateTimeDigitized"},
	},
	CategoryCamera: {
		{"IFD0", 0x010F, "Make"},
		{"IFD0", 0x0110, "Model"},
		{"IFD/Exif", 0xA434, "LensModel"},
	},
	CategoryPersonal: {
		{"IFD0", 0x013B, "Artist"},
		{"IFD0", 0x8298, "Copyright"},
		{"IFD/Exif", 0x9286, "UserComment"},
	},
}

// gpsIFDPointer is the IFD0 tag holding the GPS sub-IFD offset.
const gpsIFDPointer = 0x8825

// DefaultCategories is what privacy mode removes when the caller does not
// choose: position, timestamps, and personal fields, but not the camera
// identity.
var DefaultCategories = []string{CategoryGPS, CategoryDateTime, CategoryPersonal}

// Scan reports the sensitive metadata present in an image, grouped by
// category, each entry as "Tag: value" with the value truncated.
func Scan(path string) map[string][]string {
	found := make(map[string][]string)
	fields := parser.ExifData(path)

	record := func(category, name, value string) {
		if runes := []rune(value); len(runes) > 50 {
			value = string(runes[:50])
		}
		found[category] = append(found[category], name+": "+value)
	}

	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		if len(key) >= 3 && key[:3] == "GPS" {
			record(CategoryGPS, key, value)
			continue
		}
		for category, tags := range sensitiveFields {
			for _, tag := range tags {
				if tag.name == key {
					record(category, key, value)
				}
			}
		}
	}
	return found
}

// Apply removes the named sensitive categories from the image and
// re-saves it. A nil category list means DefaultCategories; the All
// category strips every metadata structure.
func Apply(path string, categories []string) error {
	if categories == nil {
		categories = DefaultCategories
	}
	for _, c := range categories {
		if c == CategoryAll {
			return StripAll(path)
		}
	}

	mp := jpegstructure.NewJpegMediaParser()
	intfc, err := mp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("privacy mode: parse %s: %w", filepath.Base(path), err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// Nothing to remove.
		return nil
	}

	for _, category := range categories {
		if category == CategoryGPS {
			if _, err := rootIb.DeleteAll(gpsIFDPointer); err != nil {
				logrus.Debugf("no GPS IFD in %s: %v", filepath.Base(path), err)
			}
			continue
		}
		for _, tag := range sensitiveFields[category] {
			ib, err := exif.GetOrCreateIbFromRootIb(rootIb, tag.ifdPath)
			if err != nil {
				return fmt.Errorf("privacy mode: %w", err)
			}
			if _, err := ib.DeleteAll(tag.tagID); err != nil {
				logrus.Debugf("tag %s absent in %s: %v", tag.name, filepath.Base(path), err)
			}
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("privacy mode: %w", err)
	}
	return writeJPEGFile(path, sl)
}

// Report summarises the privacy exposure of a single image.
type Report struct {
	File         string              `json:"file"`
	HasGPS       bool                `json:"has_gps"`
	HasTimestamp bool                `json:"has_timestamp"`
	HasCamera    bool                `json:"has_camera_info"`
	HasPersonal  bool                `json:"has_personal_info"`
	FieldsFound  int                 `json:"sensitive_fields_found"`
	Details      map[string][]string `json:"details"`
	RiskLevel    string              `json:"risk_level"`
}

// ReportFor generates a privacy report for an image.
func ReportFor(path string) Report {
	details := Scan(path)

	count := 0
	for _, entries := range details {
		count += len(entries)
	}

	risk := "LOW"
	if count > 0 {
		risk = "HIGH"
	}
	return Report{
		File:         filepath.Base(path),
		HasGPS:       len(details[CategoryGPS]) > 0,
		HasTimestamp: len(details[CategoryDateTime]) > 0,
		HasCamera:    len(details[CategoryCamera]) > 0,
		HasPersonal:  len(details[CategoryPersonal]) > 0,
		FieldsFound:  count,
		Details:      details,
		RiskLevel:    risk,
	}
}

// BatchStats summarises a directory-wide privacy pass.
type BatchStats struct {
	TotalProcessed int
	Successful     int
	Failed         int
	Errors         []string
}

// ApplyBatch applies privacy mode to every supported image under dir.
// Failures are collected, not fatal.
func ApplyBatch(dir string, categories []string) BatchStats {
	var stats BatchStats
	for _, path := range parser.FindImages(dir) {
		stats.TotalProcessed++
		if err := Apply(path, categories); err != nil {
			logrus.Warnf("privacy batch: %s: %v", path, err)
			stats.Failed++
			stats.Errors = append(stats.Errors, path)
			continue
		}
		stats.Successful++
	}
	return stats
}

// EncodeMetadata serialises a metadata map for storage. This is base64
// obfuscation, not cryptography; the password is accepted for interface
// compatibility and ignored.
func EncodeMetadata(metadata map[string]string, password string) (string, error) {
	_ = password
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeMetadata reverses EncodeMetadata.
func DecodeMetadata(encoded string, password string) (map[string]string, error) {
	_ = password
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return metadata, nil
}

// secureDeletePasses is the number of random-data overwrites before the
// file is removed.
const secureDeletePasses = 3

// SecureDelete overwrites the file with random data several times before
// removing it, so a stripped original cannot be recovered from disk.
func SecureDelete(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("secure delete: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("secure delete: %w", err)
	}
	for i := 0; i < secureDeletePasses; i++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return fmt.Errorf("secure delete: %w", err)
		}
		if _, err := io.CopyN(f, rand.Reader, st.Size()); err != nil {
			f.Close()
			return fmt.Errorf("secure delete: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("secure delete: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("secure delete: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("secure delete: %w", err)
	}
	return nil
}

// Categories returns the category names privacy mode understands.
func Categories() []string {
	return []string{CategoryGPS, CategoryDateTime, CategoryCamera, CategoryPersonal, CategoryAll}
}
