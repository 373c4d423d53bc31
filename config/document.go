package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

const defaultName = "GenericConfig"

// AgentSpec declares one agent: its type tag and the topics it reads and writes.
type AgentSpec struct {
	Type    string   `json:"type" yaml:"type" jsonschema:"required,description=agent type tag which may be package qualified"`
	Inputs  []string `json:"inputs,omitempty" yaml:"inputs,omitempty" jsonschema:"description=topics the agent subscribes to"`
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty" jsonschema:"description=topics the agent publishes to"`
}

// Document is a parsed configuration.
type Document struct {
	Name          string      `json:"name,omitempty" yaml:"name,omitempty"`
	Version       int         `json:"version,omitempty" yaml:"version,omitempty"`
	QueueCapacity int         `json:"queue_capacity,omitempty" yaml:"queue_capacity,omitempty" jsonschema:"minimum=1,description=queue capacity of each agent"`
	Agents        []AgentSpec `json:"agents" yaml:"agents" jsonschema:"required"`
}

// Parse reads the block format: three non-blank lines per agent holding the
// type tag, the comma-separated input topics and the comma-separated output
// topics. Lines starting with # are comments.
func Parse(r io.Reader) (Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("read configuration: %w", err)
	}
	if len(lines)%3 != 0 {
		return Document{}, fmt.Errorf("%w: %d lines is not a multiple of 3", ErrMalformed, len(lines))
	}

	doc := Document{Name: defaultName}
	for i := 0; i < len(lines); i += 3 {
		doc.Agents = append(doc.Agents, AgentSpec{
			Type:    lines[i],
			Inputs:  splitTopics(lines[i+1]),
			Outputs: splitTopics(lines[i+2]),
		})
	}
	return doc, nil
}

// ParseYAML reads a YAML document. JSON is valid YAML and is accepted too.
func ParseYAML(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if doc.Name == "" {
		doc.Name = defaultName
	}
	for i, spec := range doc.Agents {
		if strings.TrimSpace(spec.Type) == "" {
			return Document{}, fmt.Errorf("%w: agent %d has no type", ErrMalformed, i)
		}
	}
	return doc, nil
}

// Load reads the file at path. Files ending in .yaml, .yml or .json are read
// as documents, anything else in the block format.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(bytes.NewReader(data))
	default:
		return Parse(bytes.NewReader(data))
	}
}

// Schema returns the JSON schema describing Document.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	return r.Reflect(&Document{})
}

// SchemaJSON returns Schema rendered as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func splitTopics(line string) []string {
	var topics []string
	for _, name := range strings.Split(line, ",") {
		if name = strings.TrimSpace(name); name != "" {
			topics = append(topics, name)
		}
	}
	return topics
}
