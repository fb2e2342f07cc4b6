package pin

import (
	"khon-reep/internal/catalog"
	"khon-reep/models"
)

// Option is one tappable incident category
type Option struct {
	Type  models.IncidentType `json:"type"`
	Label string              `json:"label"`
	Style catalog.Style       `json:"style"`
}

// Options returns the four fixed picker options in catalog order
func Options(c *catalog.Catalog) []Option {
	options := make([]Option, 0, len(c.Types))
	for _, entry := range c.Types {
		options = append(options, Option{
			Type:  entry.Type,
			Label: entry.Label,
			Style: entry.Style,
		})
	}
	return options
}
