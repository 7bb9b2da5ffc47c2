package definition

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/facepay/flowgate/flow"
	"github.com/facepay/flowgate/model"
	"gopkg.in/yaml.v3"
)

// LoadFile reads one flow definition from a YAML file and compile-checks it
// before returning. A definition with dangling stage ids, unknown rules or
// effects never makes it into storage.
func LoadFile(path string) (*model.FlowDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition file: %w", err)
	}
	var def model.FlowDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse definition file %s: %w", path, err)
	}
	if _, err := flow.Compile(&def); err != nil {
		return nil, fmt.Errorf("invalid definition in %s: %w", path, err)
	}
	return &def, nil
}

// LoadDir loads every .yaml/.yml file in dir.
func LoadDir(dir string) ([]model.FlowDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read definitions dir: %w", err)
	}
	var defs []model.FlowDef
	for _, entry := range entries {
		if entry.IsDir() || !isDefinitionFile(entry.Name()) {
			continue
		}
		def, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, nil
}

func isDefinitionFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
