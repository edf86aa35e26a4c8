package core

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FormatID enumerates every recognised image format.
type FormatID string

const (
	FmtJPEG FormatID = "jpeg"
	FmtPNG  FormatID = "png"
	FmtGIF  FormatID = "gif"
	FmtWebP FormatID = "webp"
	FmtTIFF FormatID = "tiff"
	FmtBMP  FormatID = "bmp"
	FmtHEIC FormatID = "heic"
	FmtICO  FormatID = "ico"

	FmtUnknown FormatID = "unknown"
)

// FormatInfo describes what the application supports per format.
type FormatInfo struct {
	Name       string
	Extensions []string
	MIMETypes  []string
	CanView    bool
	CanEdit    bool
	CanStrip   bool
	Notes      string
}

var formatInfo = map[FormatID]FormatInfo{
	FmtJPEG: {
		Name:       "JPEG",
		Extensions: []string{".jpg", ".jpeg"},
		MIMETypes:  []string{"image/jpeg"},
		CanView:    true,
		CanEdit:    true,
		CanStrip:   true,
		Notes:      "EXIF in APP1. Full view, edit, and strip support.",
	},
	FmtPNG: {
		Name:       "PNG",
		Extensions: []string{".png"},
		MIMETypes:  []string{"image/png"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   true,
		Notes:      "tEXt/iTXt/eXIf chunks. Strip removes ancillary metadata chunks.",
	},
	FmtGIF: {
		Name:       "GIF",
		Extensions: []string{".gif"},
		MIMETypes:  []string{"image/gif"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "Header and comment metadata only.",
	},
	FmtWebP: {
		Name:       "WebP",
		Extensions: []string{".webp"},
		MIMETypes:  []string{"image/webp"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "Decode-only; EXIF chunk viewing best-effort.",
	},
	FmtTIFF: {
		Name:       "TIFF",
		Extensions: []string{".tiff", ".tif"},
		MIMETypes:  []string{"image/tiff"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "IFD-based metadata. View only.",
	},
	FmtBMP: {
		Name:       "BMP",
		Extensions: []string{".bmp"},
		MIMETypes:  []string{"image/bmp"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "Limited header metadata only.",
	},
	FmtHEIC: {
		Name:       "HEIC/HEIF",
		Extensions: []string{".heic", ".heif"},
		MIMETypes:  []string{"image/heic", "image/heif"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "EXIF embedded in ISOBMFF container. View only.",
	},
	FmtICO: {
		Name:       "ICO",
		Extensions: []string{".ico"},
		MIMETypes:  []string{"image/x-icon"},
		CanView:    true,
		CanEdit:    false,
		CanStrip:   false,
		Notes:      "Header metadata only.",
	},
}

// InfoFor returns the capability record for a format.
func InfoFor(id FormatID) FormatInfo { return formatInfo[id] }

// extMap maps lowercase extensions to format IDs.
var extMap = map[string]FormatID{
	".jpg":  FmtJPEG,
	".jpeg": FmtJPEG,
	".png":  FmtPNG,
	".gif":  FmtGIF,
	".webp": FmtWebP,
	".tiff": FmtTIFF,
	".tif":  FmtTIFF,
	".bmp":  FmtBMP,
	".heic": FmtHEIC,
	".heif": FmtHEIC,
	".ico":  FmtICO,
}

// IsSupportedImage reports whether the file extension belongs to a
// recognised image format.
func IsSupportedImage(path string) bool {
	_, ok := extMap[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DetectFormat returns the FormatID for the given file, first by reading
// magic bytes and falling back to extension.
func DetectFormat(path string) (FormatID, error) {
	f, err := os.Open(path)
	if err != nil {
		return FmtUnknown, fmt.Errorf("detect format: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, err := io.ReadFull(f, buf)
	if err != nil && n == 0 {
		return FmtUnknown, fmt.Errorf("detect format: %w", err)
	}
	buf = buf[:n]

	if id := detectMagic(buf); id != FmtUnknown {
		return id, nil
	}

	if id, ok := extMap[strings.ToLower(filepath.Ext(path))]; ok {
		return id, nil
	}
	return FmtUnknown, nil
}

// DetectFormatBytes sniffs the format from a header slice alone.
func DetectFormatBytes(b []byte) FormatID { return detectMagic(b) }

func detectMagic(b []byte) FormatID {
	if len(b) < 4 {
		return FmtUnknown
	}
	switch {
	// JPEG: FF D8 FF
	case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return FmtJPEG
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	case bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return FmtPNG
	// GIF: GIF87a or GIF89a
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return FmtGIF
	// WebP: RIFF????WEBP
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return FmtWebP
	// TIFF: II*\0 (little-endian) or MM\0* (big-endian)
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(b, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return FmtTIFF
	// BMP: BM
	case b[0] == 0x42 && b[1] == 0x4D:
		return FmtBMP
	// HEIC/HEIF: ftyp box with heic/heix/mif1 brand
	case len(b) >= 12 && bytes.Equal(b[4:8], []byte("ftyp")):
		brand := string(b[8:12])
		if brand == "heic" || brand == "heix" || brand == "mif1" || brand == "msf1" {
			return FmtHEIC
		}
		return FmtUnknown
	// ICO: 00 00 01 00
	case b[0] == 0x00 && b[1] == 0x00 && b[2] == 0x01 && b[3] == 0x00:
		return FmtICO
	}
	return FmtUnknown
}
