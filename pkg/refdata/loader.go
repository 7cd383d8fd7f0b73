package refdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSource reads one source layer from a YAML file.
func LoadSource(path string) (Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("refdata: read %s: %w", path, err)
	}
	var src Source
	if err := yaml.Unmarshal(raw, &src); err != nil {
		return Source{}, fmt.Errorf("refdata: parse %s: %w", path, err)
	}
	if src.Name == "" {
		src.Name = path
	}
	return src, nil
}

// LoadChain reads the given YAML source files and merges them with the
// built-in standard source at the bottom of the chain.
func LoadChain(paths ...string) (*Chain, error) {
	sources := make([]Source, 0, len(paths)+1)
	for _, p := range paths {
		src, err := LoadSource(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	sources = append(sources, Standard())
	return NewChain(sources...), nil
}
