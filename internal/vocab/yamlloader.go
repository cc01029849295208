package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a vocabulary YAML file.
//
// Example:
//
//	vocabulary:
//	  name: "Biology 101"
//	terms:
//	  - term: "Mitochondria"
//	    aliases: ["my toe con dria"]
//	    tags: [biology]
//	  - term: "Dr Okafor"
//	    kind: person
type File struct {
	Vocabulary Meta   `yaml:"vocabulary"`
	Terms      []Term `yaml:"terms"`
}

// Meta describes a vocabulary file.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

// LoadFile reads and parses a vocabulary YAML file from disk.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open vocabulary file %q: %w", path, err)
	}
	defer f.Close()

	vf, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("vocab: parse vocabulary file %q: %w", path, err)
	}
	return vf, nil
}

// LoadFromReader parses vocabulary YAML from r. Unknown keys are rejected.
// An empty document yields an empty File.
func LoadFromReader(r io.Reader) (*File, error) {
	var vf File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&vf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("vocab: decode yaml: %w", err)
	}
	return &vf, nil
}

// Import adds every term of vf to store and returns how many were added.
func Import(ctx context.Context, store Store, vf *File) (int, error) {
	if vf == nil {
		return 0, fmt.Errorf("vocab: file must not be nil")
	}
	n, err := store.BulkImport(ctx, vf.Terms)
	if err != nil {
		return n, fmt.Errorf("vocab: import %q: %w", vf.Vocabulary.Name, err)
	}
	return n, nil
}
