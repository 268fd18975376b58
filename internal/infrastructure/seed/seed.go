package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"agency-rbac/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Permissions []domain.Permission
	Roles       []domain.Role
}

type fileFormat struct {
	Permissions []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"permissions"`
	Roles []struct {
		ID          string   `yaml:"id"`
		Name        string   `yaml:"name"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"roles"`
}

// Load reads the seed file at path, or the embedded default when path is empty.
func Load(path string) (Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Catalog{}, err
		}
	}
	return Parse(data)
}

// Parse decodes a seed document and checks that ids are unique and that every
// role references only catalog permissions.
func Parse(data []byte) (Catalog, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Catalog{}, fmt.Errorf("parse seed: %w", err)
	}
	var (
		out   Catalog
		errs  []error
		known = map[string]bool{}
	)
	for _, p := range doc.Permissions {
		if p.ID == "" || p.Name == "" {
			errs = append(errs, fmt.Errorf("permission %q: id and name are required", p.ID))
			continue
		}
		if known[p.ID] {
			errs = append(errs, fmt.Errorf("permission %q: duplicate id", p.ID))
			continue
		}
		known[p.ID] = true
		out.Permissions = append(out.Permissions, domain.Permission{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	roles := map[string]bool{}
	for _, r := range doc.Roles {
		if r.ID == "" || r.Name == "" {
			errs = append(errs, fmt.Errorf("role %q: id and name are required", r.ID))
			continue
		}
		if roles[r.ID] {
			errs = append(errs, fmt.Errorf("role %q: duplicate id", r.ID))
			continue
		}
		roles[r.ID] = true
		for _, pid := range r.Permissions {
			if !known[pid] {
				errs = append(errs, fmt.Errorf("role %q: %w %q", r.ID, domain.ErrUnknownPermission, pid))
			}
		}
		out.Roles = append(out.Roles, domain.Role{ID: r.ID, Name: r.Name, Permissions: r.Permissions})
	}
	if err := errors.Join(errs...); err != nil {
		return Catalog{}, err
	}
	return out, nil
}
