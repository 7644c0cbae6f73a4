package reference

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML representation of a reference catalog.
type catalogFile struct {
	Dim        int            `yaml:"dim"`
	Model      string         `yaml:"model,omitempty"`
	References []catalogEntry `yaml:"references"`
}

type catalogEntry struct {
	UID       string    `yaml:"uid,omitempty"`
	Name      string    `yaml:"name"`
	Embedding []float32 `yaml:"embedding"`
}

// LoadFile reads a reference catalog from a YAML file.
// Entries keep their file order; entries without a UID get one assigned.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read references file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse references file: %w", err)
	}

	set := NewSet(file.Dim)
	for _, e := range file.References {
		if e.UID == "" {
			if _, err := set.Add(e.Name, e.Embedding); err != nil {
				return nil, fmt.Errorf("references file %s: %w", path, err)
			}
			continue
		}
		if err := set.AddEntry(Entry{UID: e.UID, Name: e.Name, Embedding: e.Embedding}); err != nil {
			return nil, fmt.Errorf("references file %s: %w", path, err)
		}
	}

	return set, nil
}

// SaveFile writes a reference catalog to a YAML file.
func SaveFile(path string, set *Set) error {
	file := catalogFile{
		Dim:        set.Dim(),
		References: make([]catalogEntry, 0, set.Len()),
	}
	for _, e := range set.Entries() {
		file.References = append(file.References, catalogEntry{
			UID:       e.UID,
			Name:      e.Name,
			Embedding: e.Embedding,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("could not marshal references: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("could not write references file: %w", err)
	}
	return nil
}
