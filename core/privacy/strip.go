package privacy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"

	"github.com/khawarahemad/metadata-expert/core"
)

// StripAll removes every metadata structure from the image in place,
// preserving pixel data.
func StripAll(path string) error {
	return StripTo(path, path)
}

// StripTo writes a metadata-free copy of src to dest. JPEG metadata
// segments and PNG ancillary metadata chunks are dropped; all other data
// passes through untouched.
func StripTo(src, dest string) error {
	format, err := core.DetectFormat(src)
	if err != nil {
		return fmt.Errorf("strip metadata: %w", err)
	}

	switch format {
	case core.FmtJPEG:
		return stripJPEG(src, dest)
	case core.FmtPNG:
		return stripPNG(src, dest)
	default:
		info := core.InfoFor(format)
		return fmt.Errorf("strip metadata: %s does not support strip", info.Name)
	}
}

// ─── JPEG ────────────────────────────────────────────────────────────────────

// jpegMetaMarkers are the segment markers dropped on strip.
var jpegMetaMarkers = map[byte]bool{
	0xE1: true, // APP1, EXIF / XMP
	0xE2: true, // APP2, ICC profile / FlashPix
	0xEC: true, // APP12, Picture Info
	0xED: true, // APP13, IPTC / Photoshop
	0xEE: true, // APP14, Adobe
	0xFE: true, // COM, comment
}

// Markers with structural meaning to the segment reader. markerScan is a
// pseudo-marker labelling the entropy-coded data after SOS, which is
// carried verbatim.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerScan = 0x00
)

type jpegSegment struct {
	marker byte
	data   []byte
}

func stripJPEG(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("strip jpeg: %w", err)
	}
	segments, err := readJPEGSegments(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("strip jpeg: %w", err)
	}

	kept := segments[:0]
	for _, seg := range segments {
		if jpegMetaMarkers[seg.marker] {
			continue
		}
		kept = append(kept, seg)
	}

	if err := writeJPEGSegments(dest, kept); err != nil {
		return fmt.Errorf("strip jpeg: %w", err)
	}
	return nil
}

func readJPEGSegments(r io.Reader) ([]jpegSegment, error) {
	br := bufio.NewReader(r)

	var sig [2]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil {
		return nil, err
	}
	if sig[0] != 0xFF || sig[1] != markerSOI {
		return nil, fmt.Errorf("not a JPEG")
	}
	segs := []jpegSegment{{marker: markerSOI}}

	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return segs, nil
		}
		if err != nil {
			return nil, err
		}
		if b != 0xFF {
			// Unframed bytes; carry them through untouched.
			rest, err := io.ReadAll(br)
			if err != nil {
				return nil, err
			}
			segs = append(segs, jpegSegment{marker: markerScan, data: append([]byte{b}, rest...)})
			return segs, nil
		}

		marker, err := br.ReadByte()
		if err != nil {
			return segs, nil
		}
		switch marker {
		case markerSOI:
			segs = append(segs, jpegSegment{marker: marker})
		case markerEOI:
			segs = append(segs, jpegSegment{marker: marker})
			return segs, nil
		default:
			var lenBuf [2]byte
			if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
				return segs, nil
			}
			n := int(binary.BigEndian.Uint16(lenBuf[:])) - 2
			if n < 0 {
				return segs, nil
			}
			data := make([]byte, n)
			if _, err := io.ReadFull(br, data); err != nil {
				return segs, nil
			}
			segs = append(segs, jpegSegment{marker: marker, data: data})

			if marker == markerSOS {
				// Entropy-coded data runs from the SOS header to EOF
				// and may contain 0xFF bytes that are not markers.
				rest, err := io.ReadAll(br)
				if err != nil {
					return nil, err
				}
				segs = append(segs, jpegSegment{marker: markerScan, data: rest})
				return segs, nil
			}
		}
	}
}

func writeJPEGSegments(path string, segs []jpegSegment) error {
	var buf bytes.Buffer
	for _, seg := range segs {
		switch seg.marker {
		case markerSOI, markerEOI:
			buf.Write([]byte{0xFF, seg.marker})
		case markerScan:
			buf.Write(seg.data)
		default:
			var hdr [4]byte
			hdr[0], hdr[1] = 0xFF, seg.marker
			binary.BigEndian.PutUint16(hdr[2:], uint16(len(seg.data)+2))
			buf.Write(hdr[:])
			buf.Write(seg.data)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func writeJPEGFile(path string, sl *jpegstructure.SegmentList) error {
	b := new(bytes.Buffer)
	if err := sl.Write(b); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ─── PNG ─────────────────────────────────────────────────────────────────────

// pngMetaChunks are the ancillary chunk types dropped on strip. Structural
// chunks (IHDR, PLTE, IDAT, IEND, tRNS) always pass through.
var pngMetaChunks = map[string]bool{
	"tEXt": true,
	"iTXt": true,
	"zTXt": true,
	"eXIf": true,
	"tIME": true,
	"iCCP": true,
	"sRGB": true,
	"gAMA": true,
	"cHRM": true,
	"bKGD": true,
	"hIST": true,
	"pHYs": true,
	"sBIT": true,
	"sPLT": true,
}

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type pngChunk struct {
	typ  string
	data []byte
}

func stripPNG(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("strip png: %w", err)
	}
	chunks, err := readPNGChunks(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("strip png: %w", err)
	}

	kept := chunks[:0]
	for _, c := range chunks {
		if pngMetaChunks[c.typ] {
			continue
		}
		kept = append(kept, c)
	}

	if err := writePNGChunks(dest, kept); err != nil {
		return fmt.Errorf("strip png: %w", err)
	}
	return nil
}

func readPNGChunks(r io.Reader) ([]pngChunk, error) {
	sig := make([]byte, 8)
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, fmt.Errorf("not a valid PNG")
	}

	var chunks []pngChunk
	hdr := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(hdr[0:4])
		typ := string(hdr[4:8])

		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			break
		}
		crc := make([]byte, 4)
		io.ReadFull(r, crc)

		chunks = append(chunks, pngChunk{typ: typ, data: data})
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

func writePNGChunks(path string, chunks []pngChunk) error {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	for _, c := range chunks {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.data)))
		buf.Write(lenBuf[:])
		buf.WriteString(c.typ)
		buf.Write(c.data)

		// CRC covers type + data.
		crc := crc32.NewIEEE()
		crc.Write([]byte(c.typ))
		crc.Write(c.data)
		var crcBuf [4]byte
		binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
		buf.Write(crcBuf[:])
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
