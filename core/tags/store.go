// Package tags implements the JSON-backed tagging store: free-text tags
// per image path, a tag hierarchy with usage counts, and an action
// history. Every mutation is persisted immediately.
package tags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// historyLimit caps the number of retained history entries.
const historyLimit = 1000

// TagDef describes a tag in the hierarchy.
type TagDef struct {
	Description string `json:"description"`
	Count       int    `json:"count"`
	Created     string `json:"created"`
}

// HistoryEntry records one tagging action.
type HistoryEntry struct {
	Action    string `json:"action"`
	Image     string `json:"image"`
	Tag       string `json:"tag"`
	Timestamp string `json:"timestamp"`
}

// storeData is the on-disk JSON schema.
type storeData struct {
	Hierarchy map[string]map[string]TagDef `json:"hierarchy"`
	ImageTags map[string][]string          `json:"image_tags"`
	History   []HistoryEntry               `json:"history"`
}

// Store is a tag database persisted as a JSON sidecar file.
type Store struct {
	path string
	data storeData
	now  func() time.Time
}

// DefaultPath returns the per-user location of the tag database.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("tag store path: %w", err)
	}
	return filepath.Join(base, "metadata-expert", "tags.json"), nil
}

// Open loads (or initialises) the store at path. An empty path uses
// DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("open tag store: %w", err)
	}

	s := &Store{
		path: path,
		data: storeData{
			Hierarchy: make(map[string]map[string]TagDef),
			ImageTags: make(map[string][]string),
		},
		now: time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load tag store: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("load tag store: %w", err)
	}
	if s.data.Hierarchy == nil {
		s.data.Hierarchy = make(map[string]map[string]TagDef)
	}
	if s.data.ImageTags == nil {
		s.data.ImageTags = make(map[string][]string)
	}
	return nil
}

func (s *Store) save() {
	if len(s.data.History) > historyLimit {
		s.data.History = s.data.History[len(s.data.History)-historyLimit:]
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		logrus.Warnf("save tag store: %v", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		logrus.Warnf("save tag store: %v", err)
	}
}

// DefineTag adds a tag to the hierarchy under a category.
func (s *Store) DefineTag(tag, category, description string) {
	if category == "" {
		category = "General"
	}
	if s.data.Hierarchy[category] == nil {
		s.data.Hierarchy[category] = make(map[string]TagDef)
	}
	s.data.Hierarchy[category][tag] = TagDef{
		Description: description,
		Created:     s.now().Format("2006-01-02 15:04:05"),
	}
	s.save()
}

// Tag attaches a tag to an image. Adding the same tag twice is a no-op;
// the stored list never contains duplicates.
func (s *Store) Tag(imagePath, tag string) {
	existing := s.data.ImageTags[imagePath]
	for _, t := range existing {
		if t == tag {
			return
		}
	}
	s.data.ImageTags[imagePath] = append(existing, tag)
	s.bumpCount(tag)
	s.record("add_tag", imagePath, tag)
	s.save()
}

// Untag detaches a tag from an image. Removing an absent tag is a no-op.
func (s *Store) Untag(imagePath, tag string) {
	existing := s.data.ImageTags[imagePath]
	for i, t := range existing {
		if t == tag {
			s.data.ImageTags[imagePath] = append(existing[:i], existing[i+1:]...)
			s.record("remove_tag", imagePath, tag)
			s.save()
			return
		}
	}
}

// TagsFor returns the tags attached to an image.
func (s *Store) TagsFor(imagePath string) []string {
	return append([]string(nil), s.data.ImageTags[imagePath]...)
}

// Suggest returns up to ten tags containing the partial string,
// most-used first.
func (s *Store) Suggest(partial string) []string {
	partial = strings.ToLower(partial)

	var suggestions []string
	for _, categoryTags := range s.data.Hierarchy {
		for tag := range categoryTags {
			if strings.Contains(strings.ToLower(tag), partial) {
				suggestions = append(suggestions, tag)
			}
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		ci, cj := s.countOf(suggestions[i]), s.countOf(suggestions[j])
		if ci != cj {
			return ci > cj
		}
		return suggestions[i] < suggestions[j]
	})
	if len(suggestions) > 10 {
		suggestions = suggestions[:10]
	}
	return suggestions
}

// Cloud returns the most frequently applied tags with their counts,
// limited to the given number of entries.
func (s *Store) Cloud(limit int) map[string]int {
	counts := make(map[string]int)
	for _, tagList := range s.data.ImageTags {
		for _, t := range tagList {
			counts[t]++
		}
	}
	if limit <= 0 || len(counts) <= limit {
		return counts
	}

	type kv struct {
		tag   string
		count int
	}
	ordered := make([]kv, 0, len(counts))
	for t, c := range counts {
		ordered = append(ordered, kv{t, c})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].tag < ordered[j].tag
	})

	top := make(map[string]int, limit)
	for _, e := range ordered[:limit] {
		top[e.tag] = e.count
	}
	return top
}

// FindByTag returns all image paths carrying the tag, sorted.
func (s *Store) FindByTag(tag string) []string {
	var images []string
	for path, tagList := range s.data.ImageTags {
		for _, t := range tagList {
			if t == tag {
				images = append(images, path)
				break
			}
		}
	}
	sort.Strings(images)
	return images
}

// Stats summarises the tag database.
type Stats struct {
	ImagesTagged   int
	TagsApplied    int
	UniqueTags     int
	Categories     []string
	MostCommonTags map[string]int
}

// Statistics returns tagging statistics.
func (s *Store) Statistics() Stats {
	total := 0
	unique := make(map[string]bool)
	for _, tagList := range s.data.ImageTags {
		total += len(tagList)
		for _, t := range tagList {
			unique[t] = true
		}
	}

	categories := make([]string, 0, len(s.data.Hierarchy))
	for c := range s.data.Hierarchy {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return Stats{
		ImagesTagged:   len(s.data.ImageTags),
		TagsApplied:    total,
		UniqueTags:     len(unique),
		Categories:     categories,
		MostCommonTags: s.Cloud(10),
	}
}

// Export writes the hierarchy and image tags to a JSON file.
func (s *Store) Export(path string) error {
	out := struct {
		Hierarchy map[string]map[string]TagDef `json:"hierarchy"`
		ImageTags map[string][]string          `json:"image_tags"`
	}{s.data.Hierarchy, s.data.ImageTags}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export tags: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("export tags: %w", err)
	}
	return nil
}

// Import merges hierarchy and image tags from a JSON file and persists.
func (s *Store) Import(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import tags: %w", err)
	}

	var in storeData
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("import tags: %w", err)
	}

	for category, categoryTags := range in.Hierarchy {
		if s.data.Hierarchy[category] == nil {
			s.data.Hierarchy[category] = make(map[string]TagDef)
		}
		for tag, def := range categoryTags {
			s.data.Hierarchy[category][tag] = def
		}
	}
	for image, tagList := range in.ImageTags {
		s.data.ImageTags[image] = tagList
	}
	s.save()
	return nil
}

func (s *Store) record(action, imagePath, tag string) {
	s.data.History = append(s.data.History, HistoryEntry{
		Action:    action,
		Image:     imagePath,
		Tag:       tag,
		Timestamp: s.now().Format("2006-01-02 15:04:05"),
	})
}

func (s *Store) bumpCount(tag string) {
	for _, categoryTags := range s.data.Hierarchy {
		if def, ok := categoryTags[tag]; ok {
			def.Count++
			categoryTags[tag] = def
		}
	}
}

func (s *Store) countOf(tag string) int {
	for _, categoryTags := range s.data.Hierarchy {
		if def, ok := categoryTags[tag]; ok {
			return def.Count
		}
	}
	return 0
}
