// Package core defines the shared types, interfaces, and format registry
// for Metadata Expert.
package core

// Section names used throughout the application. Exports and the GUI
// render them in this order.
const (
	SectionBasic      = "Basic Information"
	SectionExif       = "EXIF Data"
	SectionProperties = "Image Properties"
)

// Fields is an ordered flat key→string mapping. Values are opportunistically
// stringified; there are no nesting invariants.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields returns an empty ordered field map.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set stores or replaces a value, preserving first-insertion order.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key, and whether it is present.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string { return f.keys }

// Len returns the number of stored fields.
func (f *Fields) Len() int { return len(f.keys) }

// Map returns a plain map copy of the fields.
func (f *Fields) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Metadata holds everything extracted from a single image file: basic file
// info, EXIF tags, and container properties, each as a flat section.
type Metadata struct {
	FilePath string
	Format   string
	sections []string
	byName   map[string]*Fields
}

// NewMetadata returns an empty bundle for the given file.
func NewMetadata(path string) *Metadata {
	return &Metadata{FilePath: path, byName: make(map[string]*Fields)}
}

// Section returns the named section, creating it if needed.
func (m *Metadata) Section(name string) *Fields {
	if f, ok := m.byName[name]; ok {
		return f
	}
	f := NewFields()
	m.sections = append(m.sections, name)
	m.byName[name] = f
	return f
}

// Sections returns section names in insertion order.
func (m *Metadata) Sections() []string { return m.sections }

// Summary returns a short string of key fields for quick display.
func (m *Metadata) Summary() string {
	if exif, ok := m.byName[SectionExif]; ok {
		for _, key := range []string{"Model", "Make", "ImageDescription"} {
			if v, ok := exif.Get(key); ok && v != "" {
				return key + ": " + v
			}
		}
	}
	return m.Format
}

// Accessor is the capability set the presentation layer depends on. Widgets
// never touch files directly; they go through an Accessor so editing and
// persistence logic stays out of the GUI.
type Accessor interface {
	// Read returns the full metadata bundle for path.
	Read(path string) (*Metadata, error)
	// Write applies friendly-name field updates to path and re-saves.
	Write(path string, updates map[string]string) error
	// Backup copies path to a sibling backup file and returns its path.
	Backup(path string) (string, error)
	// Restore copies a backup file back over the original.
	Restore(path, backupPath string) error
}

// GPSCoordinate is a (latitude, longitude) pair in decimal degrees.
type GPSCoordinate struct {
	Latitude  float64
	Longitude float64
}
