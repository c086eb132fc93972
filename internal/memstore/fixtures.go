package memstore

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joao-fontenele/orderflow-cyclic/internal/documents"
)

// Fixtures is the YAML layout accepted by Load. Documents use the same field
// names as the document stores.
type Fixtures struct {
	Templates []struct {
		ID                 string `yaml:"id"`
		documents.Template `yaml:",inline"`
	} `yaml:"templates"`
	Menus []struct {
		ID             string `yaml:"id"`
		documents.Menu `yaml:",inline"`
	} `yaml:"menus"`
	ProductSets []struct {
		ID                   string `yaml:"id"`
		documents.ProductSet `yaml:",inline"`
	} `yaml:"productSets"`
}

// Load decodes fixtures from r into a new Store.
func Load(r io.Reader) (*Store, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	s := New()
	for _, t := range f.Templates {
		if t.ID == "" || t.UserID == "" {
			return nil, fmt.Errorf("fixture template %q: id and uid are required", t.ID)
		}
		s.AddTemplates(t.ToDomain(t.ID))
	}
	for _, m := range f.Menus {
		s.PutMenu(m.ToDomain(m.ID))
	}
	for _, ps := range f.ProductSets {
		s.PutProductSet(ps.ToDomain(ps.ID))
	}
	return s, nil
}

func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
