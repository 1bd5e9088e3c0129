package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angristan/hue-panel/internal/models"
)

type presetFile struct {
	Presets []models.ColorPreset `yaml:"presets"`
}

// LoadPresets reads colour presets from a YAML file. A missing file yields
// the built-in presets.
func LoadPresets(path string) ([]models.ColorPreset, error) {
	if path == "" {
		var err error
		path, err = DefaultPresetsPath()
		if err != nil {
			return models.DefaultPresets(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultPresets(), nil
		}
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	if len(file.Presets) == 0 {
		return models.DefaultPresets(), nil
	}

	for i, p := range file.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("preset %d has no name", i+1)
		}
		if p.Saturation < 0 || p.Saturation > 100 {
			return nil, fmt.Errorf("preset %q: saturation %v out of range 0-100", p.Name, p.Saturation)
		}
	}
	return file.Presets, nil
}
