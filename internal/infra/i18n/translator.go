package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// DefaultLocale is the last translation fallback before the raw key.
const DefaultLocale = "en"

// Registry holds one message table per locale tag and resolves lookups
// through the fallback chain: exact tag, then primary subtag, then the
// default locale, then the raw key itself.
type Registry struct {
	locales map[string]map[string]string
}

// NewRegistry loads every locales/*.yaml from fsys and validates the result.
// The default locale must be present; message tables are flat string maps.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	locales := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", name, err)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", name, err)
		}
		locales[strings.TrimSuffix(name, ".yaml")] = table
	}

	if _, ok := locales[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q is missing", DefaultLocale)
	}
	return newRegistry(locales), nil
}

func newRegistry(locales map[string]map[string]string) *Registry {
	return &Registry{locales: locales}
}

// Locales returns the loaded locale tags, sorted.
func (r *Registry) Locales() []string {
	tags := make([]string, 0, len(r.locales))
	for tag := range r.locales {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// T resolves key for the given locale tag and formats printf-style args.
// Unresolvable keys come back verbatim so a missing translation never hides
// the reply entirely.
func (r *Registry) T(locale, key string, args ...interface{}) string {
	format, ok := r.lookup(locale, key)
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (r *Registry) lookup(locale, key string) (string, bool) {
	if m, ok := r.locales[locale]; ok {
		if s, ok := m[key]; ok {
			return s, true
		}
	}
	// "en-US" falls back to "en", "zh-TW" to "zh" when present
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		if m, ok := r.locales[locale[:i]]; ok {
			if s, ok := m[key]; ok {
				return s, true
			}
		}
	}
	if m, ok := r.locales[DefaultLocale]; ok {
		if s, ok := m[key]; ok {
			return s, true
		}
	}
	return "", false
}
