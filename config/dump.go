package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Dump writes cfg to w as YAML.
func Dump(w io.Writer, cfg any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
