// Package editor writes EXIF metadata back into image files and manages
// backups and exports. Friendly field names are mapped onto library tag
// names in a static table; the binary encoding is delegated entirely to
// the EXIF library.
package editor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	exifundefined "github.com/dsoprea/go-exif/v3/undefined"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/sirupsen/logrus"

	"github.com/khawarahemad/metadata-expert/core"
	"github.com/khawarahemad/metadata-expert/core/parser"
)

// fieldSpec locates a friendly field inside the EXIF structure.
type fieldSpec struct {
	ifdPath string
	tagName string
}

// exifFields maps friendly field names to their IFD path and library tag
// name. Unknown names are skipped on edit.
var exifFields = map[string]fieldSpec{
	"DateTime":          {"IFD0", "DateTime"},
	"Artist":            {"IFD0", "Artist"},
	"ImageDescription":  {"IFD0", "ImageDescription"},
	"Copyright":         {"IFD0", "Copyright"},
	"Make":              {"IFD0", "Make"},
	"Model":             {"IFD0", "Model"},
	"Software":          {"IFD0", "Software"},
	"LensModel":         {"IFD/Exif", "LensModel"},
	"UserComment":       {"IFD/Exif", "UserComment"},
	"DateTimeOriginal":  {"IFD/Exif", "DateTimeOriginal"},
	"DateTimeDigitized": {"IFD/Exif", "DateTimeDigitized"},
}

// EditableFields returns the friendly field names the editor can write.
func EditableFields() []string {
	names := make([]string, 0, len(exifFields))
	for name := range exifFields {
		names = append(names, name)
	}
	return names
}

// EditExif applies friendly-name field updates to a JPEG file and re-saves
// it in place. Field names without a table entry are skipped.
func EditExif(path string, updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}

	mp := jpegstructure.NewJpegMediaParser()
	intfc, err := mp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("edit exif: parse %s: %w", filepath.Base(path), err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		rootIb, err = newExifBuilder()
		if err != nil {
			return fmt.Errorf("edit exif: %w", err)
		}
	}

	for name, value := range updates {
		spec, ok := exifFields[name]
		if !ok {
			logrus.Warnf("skipping unknown EXIF field %q", name)
			continue
		}
		if err := setTag(rootIb, spec, value); err != nil {
			return fmt.Errorf("edit exif: set %s: %w", name, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("edit exif: %w", err)
	}
	return writeSegments(path, sl)
}

func newExifBuilder() (*exif.IfdBuilder, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, err
	}
	ti := exif.NewTagIndex()
	if err := exif.LoadStandardTags(ti); err != nil {
		return nil, err
	}
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity,
		exifcommon.EncodeDefaultByteOrder), nil
}

func setTag(rootIb *exif.IfdBuilder, spec fieldSpec, value string) error {
	ib, err := exif.GetOrCreateIbFromRootIb(rootIb, spec.ifdPath)
	if err != nil {
		return err
	}

	// UserComment is an undefined-type tag and needs its encoding wrapper.
	if spec.tagName == "UserComment" {
		uc := exifundefined.Tag9286UserComment{
			EncodingType:  exifundefined.TagUndefinedType_9286_UserComment_Encoding_ASCII,
			EncodingBytes: []byte(value),
		}
		return ib.SetStandardWithName(spec.tagName, uc)
	}
	return ib.SetStandardWithName(spec.tagName, value)
}

func writeSegments(path string, sl *jpegstructure.SegmentList) error {
	b := new(bytes.Buffer)
	if err := sl.Write(b); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// RemoveExif writes a copy of the JPEG at dest with its EXIF segment
// dropped. Pixel data passes through unchanged.
func RemoveExif(src, dest string) error {
	mp := jpegstructure.NewJpegMediaParser()
	intfc, err := mp.ParseFile(src)
	if err != nil {
		return fmt.Errorf("remove exif: parse %s: %w", filepath.Base(src), err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	if _, err := sl.DropExif(); err != nil {
		return fmt.Errorf("remove exif: %w", err)
	}
	return writeSegments(dest, sl)
}

// CreateBackup copies the file to <stem>_backup<ext> next to the original
// and returns the backup path.
func CreateBackup(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	backupPath := filepath.Join(filepath.Dir(path), stem+"_backup"+ext)

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	return backupPath, nil
}

// RestoreBackup copies a backup file back over the original.
func RestoreBackup(originalPath, backupPath string) error {
	if err := copyFile(backupPath, originalPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	return nil
}

// ExportMetadata writes the bundle to dest in the fixed text layout.
func ExportMetadata(m *core.Metadata, dest string) error {
	return core.ExportToFile(dest, m)
}

// ExportCopy copies the image byte-for-byte to dest.
func ExportCopy(src, dest string) error {
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("export copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, st.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Accessor adapts the editor and parser into the core.Accessor capability
// set consumed by the GUI.
type Accessor struct{}

var _ core.Accessor = Accessor{}

func (Accessor) Read(path string) (*core.Metadata, error) {
	return parser.AllMetadata(path)
}

func (Accessor) Write(path string, updates map[string]string) error {
	return EditExif(path, updates)
}

func (Accessor) Backup(path string) (string, error) {
	return CreateBackup(path)
}

func (Accessor) Restore(path, backupPath string) error {
	return RestoreBackup(path, backupPath)
}
