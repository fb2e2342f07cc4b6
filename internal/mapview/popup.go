package mapview

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"khon-reep/internal/catalog"
	"khon-reep/models"
)

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="popup">` +
		`<p class="popup-title">{{.Description}}</p>` +
		`<p class="popup-id">ID: {{.ID}}</p>` +
		`<p class="popup-coords">{{.Latitude}}, {{.Longitude}}</p>` +
		`{{if .Message}}<p class="popup-message">{{.Message}}</p>{{end}}` +
		`</div>`))

type popupData struct {
	Description string
	ID          string
	Latitude    string
	Longitude   string
	Message     string
}

func formatCoordinate(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// PopupFor renders the popup body shown for a location marker
func PopupFor(c *catalog.Catalog, loc *models.Location) template.HTML {
	description, message := c.Describe(loc.Type)
	return renderPopup(popupData{
		Description: description,
		ID:          loc.ID,
		Latitude:    formatCoordinate(loc.Latitude),
		Longitude:   formatCoordinate(loc.Longitude),
		Message:     message,
	})
}

func selfPopup(c *catalog.Catalog, p models.Position) template.HTML {
	return renderPopup(popupData{
		Description: c.Self.Label,
		ID:          SelfMarkerID,
		Latitude:    formatCoordinate(p.Latitude),
		Longitude:   formatCoordinate(p.Longitude),
		Message:     c.Self.Message,
	})
}

func renderPopup(data popupData) template.HTML {
	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error rendering popup for %s: %v", data.ID, err)
		return template.HTML(template.HTMLEscapeString(data.ID))
	}
	return template.HTML(buf.String())
}
