// Package catalog holds the display metadata for each incident category:
// picker labels, popup text and marker styles.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"khon-reep/models"

	"gopkg.in/yaml.v3"
)

//go:embed incident_types.yaml
var defaultCatalog []byte

// Style is how a marker is drawn
type Style struct {
	Color       string `yaml:"color" json:"color"`
	BorderColor string `yaml:"border_color" json:"border_color"`
}

type Entry struct {
	Type        models.IncidentType `yaml:"type" json:"type"`
	Label       string              `yaml:"label" json:"label"`
	Description string              `yaml:"description" json:"description"`
	Message     string              `yaml:"message" json:"message"`
	Style       `yaml:",inline"`
}

// SelfEntry describes the "you are here" marker
type SelfEntry struct {
	Label   string `yaml:"label"`
	Message string `yaml:"message"`
	Style   `yaml:",inline"`
}

type Catalog struct {
	Default Style     `yaml:"default"`
	Self    SelfEntry `yaml:"self"`
	Types   []Entry   `yaml:"types"`

	byType map[models.IncidentType]Entry
}

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded incident catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read incident catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid incident catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Every known incident type must be present
// exactly once and nothing else may be listed.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c.byType = make(map[models.IncidentType]Entry, len(c.Types))
	for _, entry := range c.Types {
		if !entry.Type.Valid() {
			return nil, fmt.Errorf("unknown incident type %q", entry.Type)
		}
		if _, dup := c.byType[entry.Type]; dup {
			return nil, fmt.Errorf("incident type %q listed twice", entry.Type)
		}
		if entry.Label == "" {
			return nil, fmt.Errorf("incident type %q has no label", entry.Type)
		}
		c.byType[entry.Type] = entry
	}
	for _, t := range models.IncidentTypes {
		if _, ok := c.byType[t]; !ok {
			return nil, fmt.Errorf("incident type %q missing from catalog", t)
		}
	}
	if c.Default.Color == "" {
		return nil, fmt.Errorf("default style has no color")
	}
	if c.Self.Color == "" {
		c.Self.Style = c.Default
	}
	return &c, nil
}

func (c *Catalog) Lookup(t models.IncidentType) (Entry, bool) {
	entry, ok := c.byType[t]
	return entry, ok
}

// StyleFor returns the marker style for t, falling back to the default style
// for unrecognized types.
func (c *Catalog) StyleFor(t models.IncidentType) Style {
	if entry, ok := c.byType[t]; ok {
		return entry.Style
	}
	return c.Default
}

// Describe returns the popup description and message for t. Unrecognized
// types are described by their raw value.
func (c *Catalog) Describe(t models.IncidentType) (description, message string) {
	if entry, ok := c.byType[t]; ok {
		return entry.Description, entry.Message
	}
	if t == "" {
		return "Unknown incident", ""
	}
	return string(t), ""
}
