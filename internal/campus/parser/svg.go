package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"campus-map/internal/campus/models"
)

// ============================================================
// XML Structures
// ============================================================

type SVG struct {
	XMLName xml.Name `xml:"svg"`
	Group
}

type Group struct {
	Groups []Group `xml:"g"`
	Rects  []Rect  `xml:"rect"`
	Paths  []Path  `xml:"path"`
}

type Rect struct {
	Attrs
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type Path struct {
	Attrs
	D string `xml:"d,attr"`
}

// Attrs содержит data-атрибуты разметки, которыми можно уточнить импорт.
type Attrs struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"data-name,attr"`
	Type        string `xml:"data-type,attr"`
	Floor       string `xml:"data-floor,attr"`
	Building    string `xml:"data-building,attr"`
	Capacity    string `xml:"data-capacity,attr"`
	Room        string `xml:"data-room,attr"`
	Description string `xml:"data-description,attr"`
}

// ============================================================
// Import
// ============================================================

type Result struct {
	Rooms []models.Room `json:"rooms"`
	Paths []models.Path `json:"paths"`
}

// ParseSVG извлекает комнаты и маршруты из SVG-плана. Комнатами считаются элементы с id
// Room_*, *_room, *_Room, маршрутами считаются Path_*. Остальные элементы пропускаются.
func ParseSVG(r io.Reader) (*Result, error) {
	var svg SVG
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&svg); err != nil {
		return nil, fmt.Errorf("decode svg: %w", err)
	}

	res := &Result{Rooms: []models.Room{}, Paths: []models.Path{}}
	var routes []Path
	if err := collect(svg.Group, res, &routes); err != nil {
		return nil, err
	}

	for _, p := range routes {
		path, ok, err := buildPath(p, res.Rooms)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Paths = append(res.Paths, path)
		}
	}

	return res, nil
}

func collect(g Group, res *Result, routes *[]Path) error {
	for _, rect := range g.Rects {
		if classifyElementByID(rect.ID) != "room" {
			continue
		}
		if !finite(rect.X, rect.Y, rect.Width, rect.Height) {
			return fmt.Errorf("rect %q: coordinates must be finite numbers", rect.ID)
		}
		outline := []models.Point{
			{X: rect.X, Y: rect.Y},
			{X: rect.X + rect.Width, Y: rect.Y},
			{X: rect.X + rect.Width, Y: rect.Y + rect.Height},
			{X: rect.X, Y: rect.Y + rect.Height},
		}
		res.Rooms = append(res.Rooms, buildRoom(rect.Attrs, outline))
	}

	for _, path := range g.Paths {
		switch classifyElementByID(path.ID) {
		case "room":
			points, err := ParsePath(path.D)
			if err != nil || len(points) < 3 {
				continue
			}
			res.Rooms = append(res.Rooms, buildRoom(path.Attrs, dropClosingPoint(points)))
		case "path":
			*routes = append(*routes, path)
		}
	}

	for _, child := range g.Groups {
		if err := collect(child, res, routes); err != nil {
			return err
		}
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func classifyElementByID(id string) string {
	if strings.HasPrefix(id, "Room_") ||
		strings.HasSuffix(id, "_room") || // Hall_room, Toilet_room
		strings.HasSuffix(id, "_Room") {
		return "room"
	}
	if strings.HasPrefix(id, "Path_") {
		return "path"
	}
	return ""
}

// ============================================================
// Builders
// ============================================================

func buildRoom(a Attrs, outline []models.Point) models.Room {
	center := centroid(outline)

	name := a.Name
	if name == "" {
		name = nameFromID(a.ID)
	}

	roomType := models.RoomType(strings.ToLower(a.Type))
	if !roomType.Valid() {
		roomType = guessRoomType(a.ID + " " + name)
	}

	path := make([]models.Coordinate, len(outline))
	for i, p := range outline {
		path[i] = models.Coordinate{p.X, p.Y}
	}

	return models.Room{
		ID:          a.ID,
		Name:        name,
		X:           center.X,
		Y:           center.Y,
		Description: a.Description,
		Capacity:    atoiOr(a.Capacity, 0),
		Type:        roomType,
		Floor:       atoiOr(a.Floor, 1),
		Building:    a.Building,
		Amenities:   []string{},
		Path:        path,
	}
}

// buildPath привязывает маршрут к комнате из data-room или, если атрибута нет,
// к ближайшей комнате от последней точки.
func buildPath(p Path, rooms []models.Room) (models.Path, bool, error) {
	points, err := ParsePath(p.D)
	if err != nil {
		return models.Path{}, false, fmt.Errorf("path %q: %w", p.ID, err)
	}
	if len(points) == 0 {
		return models.Path{}, false, nil
	}

	roomID := p.Room
	if roomID == "" {
		nearest, ok := nearestRoom(points[len(points)-1], rooms)
		if !ok {
			return models.Path{}, false, nil
		}
		roomID = nearest.ID
	}

	pts := make([]models.PathPoint, len(points))
	for i, pt := range points {
		pts[i] = models.PathPoint{X: pt.X, Y: pt.Y, Type: models.PointWaypoint}
	}
	pts[0].Type = models.PointEntrance
	pts[len(pts)-1].Type = models.PointDestination

	return models.Path{
		ID:          p.ID,
		RoomID:      roomID,
		Name:        p.Name,
		Description: p.Description,
		Points:      pts,
		Type:        models.PathAutomatic,
		IsActive:    true,
	}, true, nil
}

// ============================================================
// Geometry helpers
// ============================================================

func centroid(points []models.Point) models.Point {
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return models.Point{X: sumX / n, Y: sumY / n}
}

func dropClosingPoint(points []models.Point) []models.Point {
	if len(points) > 1 {
		first := points[0]
		last := points[len(points)-1]
		if first.X == last.X && first.Y == last.Y {
			return points[:len(points)-1]
		}
	}
	return points
}

func nearestRoom(p models.Point, rooms []models.Room) (models.Room, bool) {
	var best models.Room
	found := false
	minDist := math.MaxFloat64

	for _, room := range rooms {
		dx := room.X - p.X
		dy := room.Y - p.Y
		if d := math.Sqrt(dx*dx + dy*dy); d < minDist {
			minDist = d
			best = room
			found = true
		}
	}
	return best, found
}

// ============================================================
// Naming helpers
// ============================================================

func nameFromID(id string) string {
	name := strings.TrimPrefix(id, "Room_")
	name = strings.TrimSuffix(name, "_room")
	name = strings.TrimSuffix(name, "_Room")
	return strings.ReplaceAll(name, "_", " ")
}

func guessRoomType(s string) models.RoomType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "lab"):
		return models.RoomLab
	case strings.Contains(s, "librar"):
		return models.RoomLibrary
	case strings.Contains(s, "auditor"), strings.Contains(s, "hall"):
		return models.RoomAuditorium
	case strings.Contains(s, "cafe"), strings.Contains(s, "canteen"), strings.Contains(s, "restaurant"):
		return models.RoomRestaurant
	case strings.Contains(s, "office"):
		return models.RoomOffice
	}
	return models.RoomClassroom
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
