package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"campus-map/internal/campus/models"
)

// ============================================================
// Renderer
// ============================================================

type Options struct {
	Floor         *int
	BackgroundURL string
	Draft         []models.PathPoint
	Width         float64
	Height        float64
}

type Renderer struct {
	markerRadius float64
	padding      float64
}

func NewRenderer() *Renderer {
	return &Renderer{markerRadius: 8, padding: 40}
}

// Render собирает SVG: подложка карты, активные маршруты, маркеры комнат, черновик.
func (r *Renderer) Render(data models.CampusMapData, opts Options) string {
	rooms := data.Rooms
	if opts.Floor != nil {
		rooms = data.FilterRooms(models.RoomFilter{Floor: opts.Floor})
	}

	visible := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		visible[room.ID] = struct{}{}
	}

	var paths []models.Path
	for _, p := range data.Paths {
		if _, ok := visible[p.RoomID]; ok && p.IsActive {
			paths = append(paths, p)
		}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = r.sceneSize(rooms, paths, opts.Draft)
	}

	var elements []string
	if opts.BackgroundURL != "" {
		elements = append(elements, fmt.Sprintf(`<image href="%s" x="0" y="0" width="%s" height="%s" preserveAspectRatio="none" />`,
			html.EscapeString(opts.BackgroundURL), formatFloat(width), formatFloat(height)))
	}
	elements = append(elements, r.renderOutlines(rooms)...)
	elements = append(elements, r.renderPaths(paths)...)
	elements = append(elements, r.renderRooms(rooms)...)
	if len(opts.Draft) > 0 {
		elements = append(elements, r.renderDraft(opts.Draft)...)
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String()
}

// sceneSize возвращает охватывающий прямоугольник всех точек плюс отступ.
func (r *Renderer) sceneSize(rooms []models.Room, paths []models.Path, draft []models.PathPoint) (float64, float64) {
	maxX, maxY := 0.0, 0.0
	extend := func(x, y float64) {
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	for _, room := range rooms {
		extend(room.X, room.Y)
		for _, c := range room.Path {
			extend(c[0], c[1])
		}
	}
	for _, p := range paths {
		for _, pt := range p.Points {
			extend(pt.X, pt.Y)
		}
	}
	for _, pt := range draft {
		extend(pt.X, pt.Y)
	}

	if maxX == 0 && maxY == 0 {
		return 1000, 1000
	}
	return maxX + r.padding, maxY + r.padding
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderOutlines(rooms []models.Room) []string {
	var out []string

	for _, room := range rooms {
		if len(room.Path) < 3 {
			continue
		}

		var path strings.Builder
		path.WriteString(`<path id="outline-`)
		path.WriteString(html.EscapeString(room.ID))
		path.WriteString(`" d="M `)
		path.WriteString(formatCoordinate(room.Path[0]))
		for _, c := range room.Path[1:] {
			path.WriteString(" L ")
			path.WriteString(formatCoordinate(c))
		}
		path.WriteString(` Z" fill="none" stroke="#888" />`)

		out = append(out, path.String())
	}

	return out
}

func (r *Renderer) renderRooms(rooms []models.Room) []string {
	var out []string

	for _, room := range rooms {
		id := html.EscapeString(room.ID)
		out = append(out, fmt.Sprintf(`<g id="room-%s" data-type="%s" data-floor="%d">`, id, html.EscapeString(string(room.Type)), room.Floor))
		out = append(out, fmt.Sprintf(`  <circle cx="%s" cy="%s" r="%s" fill="%s" stroke="#fff" />`,
			formatFloat(room.X), formatFloat(room.Y), formatFloat(r.markerRadius), roomColor(room.Type)))
		out = append(out, fmt.Sprintf(`  <text x="%s" y="%s" font-size="12" text-anchor="middle">%s</text>`,
			formatFloat(room.X), formatFloat(room.Y-r.markerRadius-4), html.EscapeString(room.Name)))
		out = append(out, `</g>`)
	}

	return out
}

func (r *Renderer) renderPaths(paths []models.Path) []string {
	var out []string

	for _, p := range paths {
		if len(p.Points) < 2 {
			continue
		}
		out = append(out, fmt.Sprintf(`<polyline id="path-%s" points="%s" fill="none" stroke="%s" stroke-width="3" />`,
			html.EscapeString(p.ID), formatPoints(p.Points), pathColor(p.Type)))
	}

	return out
}

func (r *Renderer) renderDraft(points []models.PathPoint) []string {
	var out []string

	if len(points) > 1 {
		out = append(out, fmt.Sprintf(`<polyline id="draft" points="%s" fill="none" stroke="#ff7f0e" stroke-width="2" stroke-dasharray="6 4" />`,
			formatPoints(points)))
	}
	for i, p := range points {
		out = append(out, fmt.Sprintf(`<circle id="draft-point-%d" cx="%s" cy="%s" r="4" fill="#ff7f0e" />`,
			i, formatFloat(p.X), formatFloat(p.Y)))
	}

	return out
}

// ============================================================
// Colors
// ============================================================

func roomColor(t models.RoomType) string {
	switch t {
	case models.RoomClassroom:
		return "#1f77b4"
	case models.RoomLab:
		return "#9467bd"
	case models.RoomLibrary:
		return "#2ca02c"
	case models.RoomAuditorium:
		return "#d62728"
	case models.RoomRestaurant:
		return "#ff7f0e"
	case models.RoomOffice:
		return "#8c564b"
	}
	return "#7f7f7f"
}

func pathColor(t models.PathType) string {
	if t == models.PathAutomatic {
		return "#17becf"
	}
	return "#e377c2"
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatCoordinate(c models.Coordinate) string {
	return formatFloat(c[0]) + " " + formatFloat(c[1])
}

func formatPoints(points []models.PathPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
	}
	return strings.Join(parts, " ")
}
