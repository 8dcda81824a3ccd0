package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rainparis/rainparis/internal/region"
)

// defaultRegionID is shown when the page first loads.
const defaultRegionID = 1

// PageHandler renders the browser front end.
type PageHandler struct {
	tmpl    *template.Template
	regions []pageRegion
	version string
}

type pageRegion struct {
	ID    int
	Label string
	Name  string
}

type pageData struct {
	Regions   []pageRegion
	DefaultID int
	Version   string
}

// NewPageHandler parses index.html from templates.
func NewPageHandler(templates fs.FS, regions []region.Region, version string) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	items := make([]pageRegion, len(regions))
	for i, r := range regions {
		items[i] = toPageRegion(r)
	}

	return &PageHandler{tmpl: tmpl, regions: items, version: version}, nil
}

// Index handles GET /.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.tmpl.Execute(&buf, pageData{
		Regions:   h.regions,
		DefaultID: defaultRegionID,
		Version:   h.version,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded assets under /static/.
func Static(assets fs.FS) http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(assets))
}

// toPageRegion splits "18ème - Buttes-Montmartre" into its number and name.
func toPageRegion(r region.Region) pageRegion {
	label, name, found := strings.Cut(r.Name, " - ")
	if !found {
		return pageRegion{ID: r.ID, Label: r.Name}
	}
	return pageRegion{ID: r.ID, Label: label, Name: name}
}
