package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	err = fn()
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func sampleReport() MatchReport {
	return MatchReport{
		Profile: "fight",
		Window:  "Fantasy Game",
		Frame:   [2]int{1280, 720},
		TS:      1707500000,
		Matches: []TemplateMatch{
			{Template: "accept", Score: 1.25, Location: [2]int{100, 40}, Size: [2]int{32, 16}, Decision: "found", Target: &[2]int{116, 48}},
			{Template: "close", Score: 12.5, Location: [2]int{3, 4}, Size: [2]int{8, 8}, Decision: "ignore"},
		},
	}
}

func TestPrintYAML(t *testing.T) {
	out := captureStdout(t, func() error { return PrintYAML(sampleReport()) })

	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}
	var decoded MatchReport
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Profile != "fight" || len(decoded.Matches) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Matches[0].Target == nil || *decoded.Matches[0].Target != [2]int{116, 48} {
		t.Errorf("target = %v", decoded.Matches[0].Target)
	}
	if !strings.Contains(out, "location: [100, 40]") {
		t.Errorf("expected flow-style location, got:\n%s", out)
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	out := captureStdout(t, func() error { return PrintJSON(sampleReport()) })

	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact JSON should be a single line, got:\n%s", out)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	matches := decoded["matches"].([]interface{})
	second := matches[1].(map[string]interface{})
	if _, ok := second["target"]; ok {
		t.Error("target should be omitted for unclicked matches")
	}
}

func TestPrint_RespectsFormat(t *testing.T) {
	defer func() { OutputFormat, PrettyOutput = FormatYAML, false }()

	OutputFormat, PrettyOutput = FormatJSON, true
	out := captureStdout(t, func() error { return Print(ScreenshotResult{Window: "w", Path: "a.png", Width: 2, Height: 3}) })
	if !strings.Contains(out, "\n  \"path\": \"a.png\"") {
		t.Errorf("expected indented JSON, got:\n%s", out)
	}

	OutputFormat = Format("toml")
	if err := Print(struct{}{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
