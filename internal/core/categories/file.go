package categories

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/mapsdir/internal/core"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a categories file:
//
//	categories:
//	  - id: restaurants
//	    label: Restaurants
//	    path: /data/R8_google_maps_data.csv
type File struct {
	Categories []core.Category `yaml:"categories"`
}

// LoadFile reads a categories file and replaces the registered set with it.
// The registry is left untouched when the file is invalid.
func LoadFile(path string) ([]core.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	cats, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("categories file %s: %w", path, err)
	}

	core.Clear()
	for _, c := range cats {
		core.Register(c)
	}
	return cats, nil
}

// Decode parses and validates categories YAML without registering anything.
func Decode(data []byte) ([]core.Category, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if err := validate(f.Categories); err != nil {
		return nil, err
	}
	return f.Categories, nil
}

// validate collects every problem so one pass fixes the file.
func validate(cats []core.Category) error {
	if len(cats) == 0 {
		return errors.New("no categories defined")
	}

	var errs []string
	seen := make(map[string]bool, len(cats))
	for i := range cats {
		c := &cats[i]
		c.ID = strings.TrimSpace(c.ID)
		c.Path = strings.TrimSpace(c.Path)

		switch {
		case c.ID == "":
			errs = append(errs, fmt.Sprintf("entry %d: id is required", i+1))
		case seen[c.ID]:
			errs = append(errs, fmt.Sprintf("entry %d: duplicate id %q", i+1, c.ID))
		}
		seen[c.ID] = true

		if c.Path == "" {
			errs = append(errs, fmt.Sprintf("entry %d: path is required", i+1))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid categories:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
