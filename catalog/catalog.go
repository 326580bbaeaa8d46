package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Catalog is the ordered, read-only template library. It is safe for
// concurrent use without locking because nothing mutates it after Load.
type Catalog struct {
	templates []Template
	byName    map[string]int
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the catalog built from the embedded template files.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// MustDefault is like Default but panics if the embedded catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadDir loads template files from a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load reads every *.yaml / *.yml file at the root of fsys in file name
// order, decodes one template per file and validates the result.
func Load(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	templates := make([]Template, 0, len(files))
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		t, err := decodeTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates = append(templates, t)
	}
	return New(templates)
}

// New validates templates and builds a Catalog preserving their order.
func New(templates []Template) (*Catalog, error) {
	if err := Validate(templates); err != nil {
		return nil, err
	}
	c := &Catalog{
		templates: templates,
		byName:    make(map[string]int, len(templates)),
	}
	for i, t := range templates {
		c.byName[t.Name] = i
	}
	return c, nil
}

func decodeTemplate(data []byte) (Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, err
	}
	for i, kw := range t.Keywords {
		t.Keywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	for i := range t.Nodes {
		if t.Nodes[i].TypeVersion == 0 {
			t.Nodes[i].TypeVersion = 1
		}
		if t.Nodes[i].Parameters == nil {
			t.Nodes[i].Parameters = map[string]any{}
		}
	}
	return t, nil
}

// Templates returns the templates in catalog order. The returned slice is a
// copy; the templates themselves must be treated as read-only.
func (c *Catalog) Templates() []Template {
	return append([]Template(nil), c.templates...)
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// Lookup finds a template by its exact name.
func (c *Catalog) Lookup(name string) (*Template, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.templates[i], true
}

// Flagship returns the first template marked flagship, or nil.
func (c *Catalog) Flagship() *Template {
	for i := range c.templates {
		if c.templates[i].Flagship {
			return &c.templates[i]
		}
	}
	return nil
}

// Summaries returns listing views of every template in catalog order.
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, len(c.templates))
	for i := range c.templates {
		out[i] = c.templates[i].Summary()
	}
	return out
}
