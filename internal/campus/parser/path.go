package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"campus-map/internal/campus/models"
)

// ============================================================
// Path Parser
// ============================================================

var commandRe = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// ParsePath парсит SVG path в список точек.
// Поддерживаются M, L, H, V (абсолютные и относительные) и Z.
// Лишние пары координат после M/L трактуются как неявные L.
func ParsePath(d string) ([]models.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	var points []models.Point
	var currentX, currentY float64

	matches := commandRe.FindAllStringSubmatch(d, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no path commands in %q", d)
	}

	for _, match := range matches {
		cmd := match[1]
		coords := parseCoords(match[2])
		relative := cmd == strings.ToLower(cmd)

		switch strings.ToUpper(cmd) {
		case "M", "L":
			for i := 0; i+1 < len(coords); i += 2 {
				if relative {
					currentX += coords[i]
					currentY += coords[i+1]
				} else {
					currentX, currentY = coords[i], coords[i+1]
				}
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "H":
			for _, x := range coords {
				if relative {
					currentX += x
				} else {
					currentX = x
				}
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "V":
			for _, y := range coords {
				if relative {
					currentY += y
				} else {
					currentY = y
				}
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "Z":
			// Замыкаем путь, возвращаясь к первой точке
			if len(points) > 0 {
				points = append(points, points[0])
				currentX, currentY = points[0].X, points[0].Y
			}
		}
	}

	return points, nil
}

func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Разделитель: запятая или пробел
	s = strings.ReplaceAll(s, ",", " ")
	parts := strings.Fields(s)

	var coords []float64
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		coords = append(coords, val)
	}

	return coords
}
