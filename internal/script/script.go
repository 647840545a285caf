package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a parsed pipeline script.
type Script struct {
	// Path is the file the script was loaded from, as given to LoadFile.
	Path string

	// Source is the raw file content.
	Source []byte

	// Name defaults to the file name without extension.
	Name string

	Description string

	// Threshold is the script's own comparison threshold, if it sets one.
	Threshold *float64

	// Imports are helper script names resolved through the SearchPath.
	Imports []string

	// Steps run in order for every execution.
	Steps []Step

	// Main runs after Steps, only when the script is executed directly.
	Main []Step

	importLines []int
}

// Step is a single operation call.
type Step struct {
	// Call names the operation.
	Call string `yaml:"call"`

	// Bind, if set, receives the operation's result in the Env.
	Bind string `yaml:"bind,omitempty"`

	// Args are the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Line is the 1-based source line of the step.
	Line int `yaml:"-"`
}

// document mirrors the YAML layout for strict decoding.
type document struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Threshold   *float64 `yaml:"threshold"`
	Imports     []string `yaml:"imports"`
	Steps       []Step   `yaml:"steps"`
	Main        []Step   `yaml:"main"`
}

// mainBlock matches a line that opens a top-level main block.
var mainBlock = regexp.MustCompile(`(?m)^main:`)

// LoadFile reads, decodes and validates a pipeline script.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates script source. path is used for naming and
// error frames only.
func Parse(path string, data []byte) (*Script, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: script is empty", path)
	}

	// Strict decode rejects unknown fields (typos like "step:" for "steps:")
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("%s: invalid script: %w", path, err)
	}

	s := &Script{
		Path:        path,
		Source:      data,
		Name:        doc.Name,
		Description: doc.Description,
		Threshold:   doc.Threshold,
		Imports:     doc.Imports,
		Steps:       doc.Steps,
		Main:        doc.Main,
	}
	if s.Name == "" {
		base := filepath.Base(path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := s.recordLines(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SelfValidating reports whether the source opens a top-level main block.
// The check is textual, like the convention it mirrors: a line beginning
// with "main:".
func (s *Script) SelfValidating() bool {
	return mainBlock.Match(s.Source)
}

// Dir returns the directory containing the script.
func (s *Script) Dir() string {
	return filepath.Dir(s.Path)
}

// recordLines copies source line numbers of steps and imports from the YAML
// node tree onto the decoded script.
func (s *Script) recordLines(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil
	}

	m := root.Content[0]
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, m.Content[i+1]
		if val.Kind != yaml.SequenceNode {
			continue
		}
		switch key {
		case "steps":
			setLines(s.Steps, val)
		case "main":
			setLines(s.Main, val)
		case "imports":
			s.importLines = make([]int, len(val.Content))
			for j, item := range val.Content {
				s.importLines[j] = item.Line
			}
		}
	}
	return nil
}

func setLines(steps []Step, seq *yaml.Node) {
	for i := range steps {
		if i < len(seq.Content) {
			steps[i].Line = seq.Content[i].Line
		}
	}
}

// importLine returns the source line of the i-th import, or 0.
func (s *Script) importLine(i int) int {
	if i < len(s.importLines) {
		return s.importLines[i]
	}
	return 0
}
