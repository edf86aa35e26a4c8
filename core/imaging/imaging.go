// Package imaging provides resize, compress, convert, and thumbnail
// operations over the supported image codecs.
package imaging

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	_ "golang.org/x/image/webp"

	"github.com/khawarahemad/metadata-expert/core"
)

// encodable maps lowercase target format names to their extension. WebP is
// decode-only and deliberately absent.
var encodable = map[string]string{
	"jpg":  ".jpg",
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tiff",
	"tif":  ".tiff",
}

// Resize scales the image to the given dimensions. With keepAspect the
// image is fitted inside the width×height box instead of stretched. An
// empty dst overwrites the source.
func Resize(src string, width, height int, keepAspect bool, dst string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize: invalid dimensions %dx%d", width, height)
	}

	img, _, err := decode(src)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}

	w, h := width, height
	if keepAspect {
		w, h = fitWithin(img.Bounds().Dx(), img.Bounds().Dy(), width, height)
	}
	scaled := scale(img, w, h)

	if dst == "" {
		dst = src
	}
	return encodeTo(dst, scaled, 95)
}

// Compress re-encodes the image as JPEG at the given quality (1–100).
func Compress(src string, quality int, dst string) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("compress: quality %d out of range", quality)
	}

	img, _, err := decode(src)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	if dst == "" {
		dst = src
	}
	return encodeTo(dst, img, quality)
}

// Convert re-encodes the image in the target format. For JPEG targets,
// alpha is flattened onto a white background. An empty dst derives
// <stem>.<format> next to the source.
func Convert(src, targetFormat, dst string) error {
	target := strings.ToLower(strings.TrimPrefix(targetFormat, "."))
	ext, ok := encodable[target]
	if !ok {
		return fmt.Errorf("convert: unsupported target format %q", targetFormat)
	}

	img, _, err := decode(src)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	if ext == ".jpg" {
		img = flattenAlpha(img)
	}

	if dst == "" {
		stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		dst = filepath.Join(filepath.Dir(src), stem+ext)
	}
	return encodeTo(dst, img, 95)
}

// Thumbnail writes a small aspect-preserving preview. Zero dimensions
// default to 150×150; an empty dst derives .thumb_<name> next to the
// source.
func Thumbnail(src string, width, height int, dst string) error {
	if width <= 0 {
		width = 150
	}
	if height <= 0 {
		height = 150
	}
	if dst == "" {
		dst = filepath.Join(filepath.Dir(src), ".thumb_"+filepath.Base(src))
	}
	return Resize(src, width, height, true, dst)
}

// Info describes an image file for display.
type Info struct {
	Filename   string
	Format     string
	Width      int
	Height     int
	SizeBytes  int64
	FrameCount int
}

// InfoFor returns comprehensive information for an image file.
func InfoFor(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("image info: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("image info: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("image info: %w", err)
	}

	info := Info{
		Filename:   filepath.Base(path),
		Format:     strings.ToUpper(format),
		Width:      cfg.Width,
		Height:     cfg.Height,
		SizeBytes:  st.Size(),
		FrameCount: 1,
	}

	if format == "gif" {
		if _, err := f.Seek(0, 0); err == nil {
			if g, err := gif.DecodeAll(f); err == nil {
				info.FrameCount = len(g.Image)
			}
		}
	}
	return info, nil
}

// BatchStats summarises a directory-wide image operation.
type BatchStats struct {
	Total             int
	Successful        int
	Failed            int
	TotalOriginalSize int64
	TotalNewSize      int64
	Errors            []string
}

// CompressionRatio returns the percentage of bytes saved across the batch.
func (s BatchStats) CompressionRatio() float64 {
	if s.TotalOriginalSize == 0 {
		return 0
	}
	return float64(s.TotalOriginalSize-s.TotalNewSize) / float64(s.TotalOriginalSize) * 100
}

// BatchResize resizes every supported image directly under dir into
// outputDir (default dir/resized).
func BatchResize(dir string, width, height int, outputDir string) BatchStats {
	if outputDir == "" {
		outputDir = filepath.Join(dir, "resized")
	}
	return runBatch(dir, outputDir, func(src, dst string) error {
		return Resize(src, width, height, true, dst)
	}, sameName)
}

// BatchCompress compresses every supported image directly under dir into
// outputDir (default dir/compressed).
func BatchCompress(dir string, quality int, outputDir string) BatchStats {
	if outputDir == "" {
		outputDir = filepath.Join(dir, "compressed")
	}
	return runBatch(dir, outputDir, func(src, dst string) error {
		return Compress(src, quality, dst)
	}, sameName)
}

// BatchConvert converts every supported image directly under dir into
// outputDir (default dir/converted_<format>).
func BatchConvert(dir, targetFormat, outputDir string) BatchStats {
	target := strings.ToLower(strings.TrimPrefix(targetFormat, "."))
	if outputDir == "" {
		outputDir = filepath.Join(dir, "converted_"+target)
	}
	ext, ok := encodable[target]
	if !ok {
		ext = "." + target
	}
	return runBatch(dir, outputDir, func(src, dst string) error {
		return Convert(src, target, dst)
	}, func(name string) string {
		return strings.TrimSuffix(name, filepath.Ext(name)) + ext
	})
}

func sameName(name string) string { return name }

func runBatch(dir, outputDir string, op func(src, dst string) error, rename func(string) string) BatchStats {
	var stats BatchStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		logrus.Warnf("batch: read %s: %v", dir, err)
		stats.Errors = append(stats.Errors, dir)
		return stats
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logrus.Warnf("batch: create %s: %v", outputDir, err)
		stats.Errors = append(stats.Errors, outputDir)
		return stats
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(dir, entry.Name())
		if !core.IsSupportedImage(src) {
			continue
		}
		stats.Total++

		var originalSize int64
		if st, err := os.Stat(src); err == nil {
			originalSize = st.Size()
		}

		dst := filepath.Join(outputDir, rename(entry.Name()))
		if err := op(src, dst); err != nil {
			logrus.Warnf("batch: %s: %v", src, err)
			stats.Failed++
			stats.Errors = append(stats.Errors, src)
			continue
		}
		stats.Successful++
		stats.TotalOriginalSize += originalSize
		if st, err := os.Stat(dst); err == nil {
			stats.TotalNewSize += st.Size()
		}
	}
	return stats
}

func decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

func scale(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// fitWithin shrinks (or grows) w×h proportionally to fit inside maxW×maxH.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	s := scaleW
	if scaleH < s {
		s = scaleH
	}
	outW := int(float64(w) * s)
	outH := int(float64(h) * s)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

func flattenAlpha(img image.Image) image.Image {
	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	return flat
}

func encodeTo(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	case ".png":
		err = png.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tiff", ".tif":
		err = tiff.Encode(f, img, nil)
	default:
		err = fmt.Errorf("no encoder for %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return nil
}
