package routine

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed builtin_catalog.toml
var builtinCatalog []byte

type catalogFile struct {
	Routines []Template `toml:"routines"`
}

// Library is the merged, read-only routine catalog.
type Library struct {
	templates map[string]Template
	order     []string
}

// LoadLibrary builds a Library from the built-in catalog plus the user file at
// path. A missing user file is fine; a malformed one returns an error, and the
// returned Library still serves the built-ins.
func LoadLibrary(path string) (*Library, error) {
	lib := &Library{templates: make(map[string]Template)}

	builtin, err := parseCatalog(builtinCatalog)
	if err != nil {
		return lib, fmt.Errorf("parse built-in catalog: %w", err)
	}
	for _, tpl := range builtin {
		lib.add(tpl)
	}

	if strings.TrimSpace(path) == "" {
		return lib, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lib, nil
		}
		return lib, fmt.Errorf("read routine catalog: %w", err)
	}

	user, err := parseCatalog(data)
	if err != nil {
		return lib, fmt.Errorf("parse routine catalog %s: %w", path, err)
	}
	for _, tpl := range user {
		// User-authored entries win on id collision.
		lib.add(tpl)
	}
	return lib, nil
}

// NewLibrary builds a Library directly from templates; later entries win on
// id collision. Used by tests and ad hoc callers.
func NewLibrary(templates ...Template) *Library {
	lib := &Library{templates: make(map[string]Template, len(templates))}
	for _, tpl := range templates {
		lib.add(tpl)
	}
	return lib
}

func (l *Library) add(tpl Template) {
	id := strings.TrimSpace(tpl.ID)
	if id == "" {
		return
	}
	tpl.ID = id
	if _, exists := l.templates[id]; !exists {
		l.order = append(l.order, id)
	}
	l.templates[id] = tpl
}

// Resolve looks a template up by id. The second result is false when the id
// dangles; callers fall back to an empty step list.
func (l *Library) Resolve(routineID string) (Template, bool) {
	if l == nil {
		return Template{}, false
	}
	tpl, ok := l.templates[strings.TrimSpace(routineID)]
	return tpl, ok
}

// All returns every template ordered by id for stable presentation.
func (l *Library) All() []Template {
	if l == nil {
		return nil
	}
	ids := make([]string, len(l.order))
	copy(ids, l.order)
	sort.Strings(ids)
	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.templates[id])
	}
	return out
}

// Len reports the number of templates in the catalog.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.templates)
}

func parseCatalog(data []byte) ([]Template, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Routines, nil
}
