package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (expected yaml or json)", s)
	}
}

// WindowsResult is the output of the `list` command.
type WindowsResult struct {
	TS      int64         `yaml:"ts"      json:"ts"`
	Windows []WindowEntry `yaml:"windows" json:"windows"`
}

// WindowEntry is one visible top-level window.
type WindowEntry struct {
	Handle string `yaml:"handle"        json:"handle"`
	Title  string `yaml:"title"         json:"title"`
	PID    int    `yaml:"pid,omitempty" json:"pid,omitempty"`
	// Client is the client area as [x, y, width, height] in screen pixels.
	Client [4]int `yaml:"client,flow" json:"client"`
}

// MatchReport is the output of the `match` command: one capture scored
// against every template of a profile.
type MatchReport struct {
	Profile string          `yaml:"profile"          json:"profile"`
	Window  string          `yaml:"window"           json:"window"`
	Frame   [2]int          `yaml:"frame,flow"       json:"frame"`
	TS      int64           `yaml:"ts"               json:"ts"`
	Matches []TemplateMatch `yaml:"matches"          json:"matches"`
	Image   string          `yaml:"image,omitempty"  json:"image,omitempty"`
}

// TemplateMatch is the best alignment of one template.
type TemplateMatch struct {
	Template string  `yaml:"template"              json:"template"`
	Score    float64 `yaml:"score"                 json:"score"`
	Location [2]int  `yaml:"location,flow"         json:"location"`
	Size     [2]int  `yaml:"size,flow"             json:"size"`
	Decision string  `yaml:"decision"              json:"decision"`
	Target   *[2]int `yaml:"target,flow,omitempty" json:"target,omitempty"`
	Clicked  bool    `yaml:"clicked,omitempty"     json:"clicked,omitempty"`
}

// ScreenshotResult is the output of the `screenshot` command.
type ScreenshotResult struct {
	Window string `yaml:"window" json:"window"`
	Path   string `yaml:"path"   json:"path"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
	Luma   bool   `yaml:"luma,omitempty" json:"luma,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
