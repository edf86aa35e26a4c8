package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const exportRule = 80

// WriteExport renders a metadata bundle in the fixed human-readable layout:
// a title line, the export date, a section header per section, and one
// "key: value" line per field.
func WriteExport(w io.Writer, m *Metadata, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Metadata Export for: %s\n", filepath.Base(m.FilePath))
	fmt.Fprintf(&b, "Export Date: %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", exportRule) + "\n\n")

	for _, name := range m.Sections() {
		fmt.Fprintf(&b, "\n[%s]\n", name)
		b.WriteString(strings.Repeat("-", exportRule) + "\n")
		fields := m.Section(name)
		for _, key := range fields.Keys() {
			v, _ := fields.Get(key)
			fmt.Fprintf(&b, "%s: %s\n", key, v)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ExportToFile writes the text export to path.
func ExportToFile(path string, m *Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export metadata: %w", err)
	}
	defer f.Close()
	return WriteExport(f, m, time.Now())
}

// ExportJSON renders the bundle as indented JSON, sections as objects.
func ExportJSON(w io.Writer, m *Metadata) error {
	type jsonSection struct {
		Name   string            `json:"name"`
		Fields map[string]string `json:"fields"`
	}
	out := struct {
		FilePath string        `json:"file"`
		Format   string        `json:"format"`
		Sections []jsonSection `json:"sections"`
	}{
		FilePath: m.FilePath,
		Format:   m.Format,
	}
	for _, name := range m.Sections() {
		out.Sections = append(out.Sections, jsonSection{
			Name:   name,
			Fields: m.Section(name).Map(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
