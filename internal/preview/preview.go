// Package preview renders a self-contained HTML player for an EDL: the source
// video, a crop overlay that follows playback and a coloured timeline.
package preview

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path/filepath"

	"github.com/forPelevin/montager/internal/types"
)

//go:embed templates/preview.html.tmpl
var previewTemplate string

var tmpl = template.Must(template.New("preview").Parse(previewTemplate))

var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1"}

const wideColor = "#555a6e"

type legendItem struct {
	Name  string
	Color string
}

type pageData struct {
	Title     string
	VideoURL  template.URL
	Width     int
	Height    int
	Duration  float64
	Decisions types.EDL
	Colors    map[string]string
	Names     map[string]string
	Legend    []legendItem
}

// Render writes the preview page. videoPath should be absolute so the page
// works from the cache directory.
func Render(w io.Writer, videoPath string, scene types.SceneData, edl types.EDL) error {
	d := pageData{
		Title:     filepath.Base(videoPath),
		VideoURL:  template.URL((&url.URL{Scheme: "file", Path: filepath.ToSlash(videoPath)}).String()),
		Width:     scene.Width,
		Height:    scene.Height,
		Duration:  scene.Duration,
		Decisions: edl,
		Colors:    map[string]string{types.Wide: wideColor},
		Names:     map[string]string{types.Wide: "Wide"},
		Legend:    []legendItem{{Name: "Wide", Color: wideColor}},
	}
	if d.Decisions == nil {
		d.Decisions = types.EDL{}
	}
	for i, sp := range scene.Speakers {
		c := palette[i%len(palette)]
		d.Colors[sp.ID] = c
		d.Names[sp.ID] = sp.Name
		d.Legend = append(d.Legend, legendItem{Name: sp.Name, Color: c})
	}
	if err := tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}
