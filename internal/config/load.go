package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatINI  Format = "ini"
)

// settingsSection holds the globals in an ini file. Every other section is a
// profile whose name is its cmd.
const settingsSection = "settings"

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".ini":
		return FormatINI, nil
	default:
		return "", fmt.Errorf("%w: unsupported config extension %q (expected .json, .yaml, .yml or .ini)", ErrConfigInvalid, filepath.Ext(path))
	}
}

// Load reads, decodes and validates the config at path.
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates config data in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
	case FormatINI:
		err = decodeINI(data, cfg)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeINI(data []byte, cfg *Config) error {
	file, err := ini.LoadSources(ini.LoadOptions{}, data)
	if err != nil {
		return err
	}
	for _, sec := range file.Sections() {
		name := sec.Name()
		switch {
		case name == ini.DefaultSection:
			if len(sec.Keys()) > 0 {
				return fmt.Errorf("keys outside a section: %s", strings.Join(sec.KeyStrings(), ", "))
			}
		case name == settingsSection:
			if err := sec.MapTo(cfg); err != nil {
				return fmt.Errorf("[%s]: %w", name, err)
			}
		default:
			for _, key := range sec.KeyStrings() {
				if !profileKeys("ini")[key] {
					return fmt.Errorf("[%s]: unknown profile field %q", name, key)
				}
			}
			p := DefaultProfile()
			if err := sec.MapTo(&p); err != nil {
				return fmt.Errorf("[%s]: %w", name, err)
			}
			p.Cmd = name
			cfg.Profiles = append(cfg.Profiles, p)
		}
	}
	return nil
}

// UnmarshalJSON fills in defaults for keys the profile leaves out.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	v := plain(DefaultProfile())
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*p = Profile(v)
	return nil
}

// UnmarshalYAML fills in defaults for keys the profile leaves out.
func (p *Profile) UnmarshalYAML(node *yaml.Node) error {
	type plain Profile
	v := plain(DefaultProfile())
	// node.Decode does not inherit KnownFields from the outer decoder.
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if !profileKeys("yaml")[key.Value] {
				return fmt.Errorf("line %d: unknown profile field %q", key.Line, key.Value)
			}
		}
	}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = Profile(v)
	return nil
}

// profileKeys returns the Profile field names under the given struct tag.
func profileKeys(tag string) map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Profile{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get(tag), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}
