// Package templates loads a directory of reference images into named
// luminance rasters.
package templates

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mj1618/winmatch/internal/imaging"
)

// Template is a named, immutable luminance raster.
type Template struct {
	Name string
	Path string
	*imaging.Luma
}

// Library holds the templates of one directory. It is read-only once loaded
// and may be shared between goroutines.
type Library struct {
	dir       string
	templates []*Template
	byName    map[string]*Template
	skipped   []string
}

// Extensions lists the accepted file extensions, compared case-insensitively.
var Extensions = []string{".png", ".jpg", ".jpeg"}

// Load reads every regular png/jpg/jpeg file in dir. Files that fail to
// decode are skipped with a logged notice. Files are visited in lexical
// order; when two files share a stem the later one replaces the earlier one.
func Load(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	lib := &Library{dir: dir, byName: make(map[string]*Template)}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !acceptedExt(ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		luma, err := decodeFile(path)
		if err != nil {
			slog.Warn("skipping template", "path", path, "error", err)
			lib.skipped = append(lib.skipped, path)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if prev, ok := lib.byName[name]; ok {
			slog.Debug("template replaced by later file", "name", name, "old", prev.Path, "new", path)
		}
		lib.byName[name] = &Template{Name: name, Path: path, Luma: luma}
	}

	lib.templates = make([]*Template, 0, len(lib.byName))
	for _, t := range lib.byName {
		lib.templates = append(lib.templates, t)
	}
	sort.Slice(lib.templates, func(i, j int) bool { return lib.templates[i].Name < lib.templates[j].Name })
	return lib, nil
}

// Dir returns the directory the library was loaded from.
func (l *Library) Dir() string { return l.dir }

// Len returns the number of templates.
func (l *Library) Len() int { return len(l.templates) }

// All returns the templates ordered by name.
func (l *Library) All() []*Template { return l.templates }

// Get returns the template with the given name.
func (l *Library) Get(name string) (*Template, bool) {
	t, ok := l.byName[name]
	return t, ok
}

// Names returns the template names in order.
func (l *Library) Names() []string {
	names := make([]string, len(l.templates))
	for i, t := range l.templates {
		names[i] = t.Name
	}
	return names
}

// Skipped returns the paths of files that failed to decode.
func (l *Library) Skipped() []string { return l.skipped }

func acceptedExt(ext string) bool {
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func decodeFile(path string) (*imaging.Luma, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return imaging.FromImage(img), nil
}
