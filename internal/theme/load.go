package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads a catalog file. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON. Entries are taken as-is.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var c Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
		}
	}
	return c, nil
}

// LoadCatalogOrBuiltin returns the catalog at path, or the builtin catalog
// when path is empty.
func LoadCatalogOrBuiltin(path string) (Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadCatalog(path)
}
