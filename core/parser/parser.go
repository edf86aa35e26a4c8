// Package parser extracts metadata from image files: basic file info,
// EXIF tags, and container-level properties.
package parser

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dsoexif "github.com/dsoprea/go-exif/v3"
	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/sirupsen/logrus"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/khawarahemad/metadata-expert/core"
)

func init() {
	goexif.RegisterParsers(mknote.All...)
}

// BasicInfo extracts basic file and image information.
func BasicInfo(path string) (*core.Fields, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("basic info: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("basic info: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("basic info: decode %s: %w", filepath.Base(path), err)
	}

	info := core.NewFields()
	info.Set("Filename", filepath.Base(path))
	info.Set("File Path", path)
	info.Set("File Size", FormatBytes(st.Size()))
	info.Set("File Format", strings.ToUpper(format))
	info.Set("Image Width", fmt.Sprintf("%d px", cfg.Width))
	info.Set("Image Height", fmt.Sprintf("%d px", cfg.Height))
	info.Set("Image Mode", colorModelName(cfg.ColorModel))
	info.Set("Modified Date", st.ModTime().Format("2006-01-02 15:04:05"))
	return info, nil
}

// ExifData extracts EXIF tags as a flat key→string map. The primary reader
// is goexif; when it cannot decode the file the dsoprea reader is tried as
// a fallback. An image with no EXIF at all yields a single Note entry.
func ExifData(path string) *core.Fields {
	fields := core.NewFields()

	if err := exifViaGoexif(path, fields); err != nil {
		logrus.Debugf("goexif could not decode %s: %v", path, err)
		if err := exifViaDsoprea(path, fields); err != nil {
			logrus.Debugf("fallback EXIF reader failed for %s: %v", path, err)
		}
	}

	if fields.Len() == 0 {
		fields.Set("Note", "No EXIF data found")
	}
	return fields
}

type fieldWalker struct {
	fields *core.Fields
}

func (w fieldWalker) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	val := tag.String()
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	val = strings.TrimSpace(val)
	if val != "" {
		w.fields.Set(string(name), val)
	}
	return nil
}

func exifViaGoexif(path string, fields *core.Fields) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return err
	}
	return x.Walk(fieldWalker{fields: fields})
}

func exifViaDsoprea(path string, fields *core.Fields) error {
	raw, err := dsoexif.SearchFileAndExtractExif(path)
	if err != nil {
		return err
	}

	entries, _, err := dsoexif.GetFlatExifData(raw, nil)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		val := strings.TrimSpace(entry.Formatted)
		if val != "" {
			fields.Set(entry.TagName, val)
		}
	}
	return nil
}

// Properties extracts additional container-level image properties.
func Properties(path string) *core.Fields {
	props := core.NewFields()

	f, err := os.Open(path)
	if err != nil {
		props.Set("Error", err.Error())
		return props
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		props.Set("Error", err.Error())
		return props
	}

	switch cfg.ColorModel {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		props.Set("Has Transparency", "Yes")
	default:
		props.Set("Has Transparency", "No")
	}

	if _, ok := cfg.ColorModel.(color.Palette); ok {
		props.Set("Palette Based", "Yes")
	}

	if format == "gif" {
		if frames, err := gifFrameCount(path); err == nil {
			if frames > 1 {
				props.Set("Is Animated", "Yes")
				props.Set("Number of Frames", fmt.Sprintf("%d", frames))
			} else {
				props.Set("Is Animated", "No")
			}
		}
	}
	return props
}

// AllMetadata returns the complete metadata bundle for an image file.
func AllMetadata(path string) (*core.Metadata, error) {
	if !core.IsSupportedImage(path) {
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}

	basic, err := BasicInfo(path)
	if err != nil {
		return nil, err
	}

	m := core.NewMetadata(path)
	if format, ok := basic.Get("File Format"); ok {
		m.Format = format
	}
	copyFields(m.Section(core.SectionBasic), basic)
	copyFields(m.Section(core.SectionExif), ExifData(path))
	copyFields(m.Section(core.SectionProperties), Properties(path))
	return m, nil
}

func copyFields(dst, src *core.Fields) {
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		dst.Set(k, v)
	}
}

// FindImages finds all supported image files under dir, sorted by path.
func FindImages(dir string) []string {
	var images []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Warnf("scanning %s: %v", path, err)
			return nil
		}
		if !d.IsDir() && core.IsSupportedImage(path) {
			images = append(images, path)
		}
		return nil
	})
	sort.Strings(images)
	return images
}

// FormatBytes formats a byte count as a human-readable size.
func FormatBytes(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.2f TB", size)
}

func colorModelName(m color.Model) string {
	switch m {
	case color.RGBAModel, color.RGBA64Model:
		return "RGBA"
	case color.NRGBAModel, color.NRGBA64Model:
		return "NRGBA"
	case color.GrayModel, color.Gray16Model:
		return "Grayscale"
	case color.YCbCrModel:
		return "YCbCr"
	case color.NYCbCrAModel:
		return "YCbCrA"
	case color.CMYKModel:
		return "CMYK"
	}
	if _, ok := m.(color.Palette); ok {
		return "Paletted"
	}
	return "Unknown"
}

func gifFrameCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return 0, err
	}
	return len(g.Image), nil
}
