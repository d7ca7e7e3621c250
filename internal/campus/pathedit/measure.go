package pathedit

import (
	"math"

	"campus-map/internal/campus/models"
)

// ============================================================
// Measure
// ============================================================

const (
	DefaultScale        = 0.1 // метров на единицу карты
	DefaultWalkingSpeed = 1.4 // м/с
)

type Measure struct {
	Scale        float64
	WalkingSpeed float64
}

func DefaultMeasure() Measure {
	return Measure{Scale: DefaultScale, WalkingSpeed: DefaultWalkingSpeed}
}

// Distance возвращает длину ломаной в метрах, округлённая до сантиметра.
func (m Measure) Distance(points []models.PathPoint) float64 {
	scale := m.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += distance(points[i-1].Point(), points[i].Point())
	}
	return math.Round(total*scale*100) / 100
}

// EstimateMinutes возвращает время в пути, округлённое вверх до целой минуты.
func (m Measure) EstimateMinutes(meters float64) int {
	speed := m.WalkingSpeed
	if speed <= 0 {
		speed = DefaultWalkingSpeed
	}
	if meters <= 0 {
		return 0
	}
	return int(math.Ceil(meters / speed / 60))
}

func distance(p1, p2 models.Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}
