package presenter

import (
	"siteviewer/backend/services/site-viewer/internal/models"
)

const (
	mapZoom     = 9
	markerSize  = 10
	legendTitle = "color_category"
	hoverFormat = "<b>%{text}</b><br><br>battery_volts=%{customdata}<extra></extra>"
)

// Shown when there is nothing to centre on.
var defaultCenter = LatLon{Lat: 47.45, Lon: -121.95}

// Figure is a plotly.js figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace holds the markers of one colour category.
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	Name          string    `json:"name"`
	LegendGroup   string    `json:"legendgroup"`
	ShowLegend    bool      `json:"showlegend"`
	Lat           []float64 `json:"lat"`
	Lon           []float64 `json:"lon"`
	Text          []string  `json:"text"`
	CustomData    []float64 `json:"customdata"`
	HoverTemplate string    `json:"hovertemplate"`
	Marker        Marker    `json:"marker"`
}

type Marker struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type Layout struct {
	Legend   Legend    `json:"legend"`
	AutoSize bool      `json:"autosize"`
	Margin   Margin    `json:"margin"`
	Map      MapLayout `json:"map"`
}

type Legend struct {
	Title       LegendTitle `json:"title"`
	Orientation string      `json:"orientation"`
	YAnchor     string      `json:"yanchor"`
	Y           float64     `json:"y"`
	XAnchor     string      `json:"xanchor"`
	X           float64     `json:"x"`
}

type LegendTitle struct {
	Text string `json:"text"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type MapLayout struct {
	Center LatLon  `json:"center"`
	Zoom   float64 `json:"zoom"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BuildFigure renders the classified rows as a scatter map with one trace per
// non-empty category, in legend order.
func BuildFigure(snapshot *models.Snapshot) Figure {
	byCategory := make(map[models.Category]*Trace)
	var sumLat, sumLon float64
	var sites []models.BatteryStatus
	if snapshot != nil {
		sites = snapshot.Sites
	}

	for _, site := range sites {
		trace, ok := byCategory[site.ColorCategory]
		if !ok {
			trace = newTrace(site.ColorCategory)
			byCategory[site.ColorCategory] = trace
		}
		trace.Lat = append(trace.Lat, site.Latitude)
		trace.Lon = append(trace.Lon, site.Longitude)
		trace.Text = append(trace.Text, site.Site)
		trace.CustomData = append(trace.CustomData, site.BatteryVolts)
		sumLat += site.Latitude
		sumLon += site.Longitude
	}

	data := make([]Trace, 0, len(byCategory))
	for _, category := range models.Categories() {
		if trace, ok := byCategory[category]; ok {
			data = append(data, *trace)
		}
	}

	center := defaultCenter
	if n := float64(len(sites)); n > 0 {
		center = LatLon{Lat: sumLat / n, Lon: sumLon / n}
	}

	return Figure{
		Data: data,
		Layout: Layout{
			Legend: Legend{
				Title:       LegendTitle{Text: legendTitle},
				Orientation: "h",
				YAnchor:     "bottom",
				Y:           0,
				XAnchor:     "center",
				X:           0.5,
			},
			AutoSize: true,
			Margin:   Margin{},
			Map: MapLayout{
				Center: center,
				Zoom:   mapZoom,
			},
		},
	}
}

func newTrace(category models.Category) *Trace {
	return &Trace{
		Type:          "scattermap",
		Mode:          "markers",
		Name:          category.String(),
		LegendGroup:   category.String(),
		ShowLegend:    true,
		HoverTemplate: hoverFormat,
		Marker: Marker{
			Color: category.Color(),
			Size:  markerSize,
		},
	}
}
