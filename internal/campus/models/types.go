package models

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coordinate хранит пару координат контура комнаты, сериализуется как [x, y].
type Coordinate [2]float64

// ============================================================
// Rooms
// ============================================================

type RoomType string

const (
	RoomClassroom  RoomType = "classroom"
	RoomLab        RoomType = "lab"
	RoomLibrary    RoomType = "library"
	RoomAuditorium RoomType = "auditorium"
	RoomRestaurant RoomType = "restaurant"
	RoomOffice     RoomType = "office"
)

var roomTypes = []RoomType{RoomClassroom, RoomLab, RoomLibrary, RoomAuditorium, RoomRestaurant, RoomOffice}

// RoomTypes возвращает все допустимые типы помещений.
func RoomTypes() []RoomType {
	out := make([]RoomType, len(roomTypes))
	copy(out, roomTypes)
	return out
}

func (t RoomType) Valid() bool {
	for _, known := range roomTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Room struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Description string       `json:"description"`
	Capacity    int          `json:"capacity"`
	Type        RoomType     `json:"type"`
	Floor       int          `json:"floor"`
	Building    string       `json:"building"`
	Amenities   []string     `json:"amenities"`
	Path        []Coordinate `json:"path,omitempty"`
}

func (r Room) Position() Point {
	return Point{X: r.X, Y: r.Y}
}

// ============================================================
// Events
// ============================================================

type EventStatus string

const (
	EventOngoing   EventStatus = "ongoing"
	EventConfirmed EventStatus = "confirmed"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventOngoing, EventConfirmed, EventCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Event struct {
	ID        int         `json:"id"`
	Title     string      `json:"title"`
	Room      string      `json:"room"` // имя или id комнаты
	Time      string      `json:"time"`
	Date      string      `json:"date"`
	Attendees int         `json:"attendees"`
	Type      string      `json:"type"`
	Status    EventStatus `json:"status"`
	Speaker   string      `json:"speaker"`
	Priority  Priority    `json:"priority"`
}

// ============================================================
// Paths
// ============================================================

type PointType string

const (
	PointEntrance     PointType = "entrance"
	PointWaypoint     PointType = "waypoint"
	PointDestination  PointType = "destination"
	PointIntersection PointType = "intersection"
)

func (t PointType) Valid() bool {
	switch t {
	case PointEntrance, PointWaypoint, PointDestination, PointIntersection:
		return true
	}
	return false
}

type PathPoint struct {
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	ID    string    `json:"id,omitempty"`
	Label string    `json:"label,omitempty"`
	Type  PointType `json:"type,omitempty"`
}

func (p PathPoint) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

type PathType string

const (
	PathAutomatic   PathType = "automatic"
	PathCustom      PathType = "custom"
	PathUserCreated PathType = "user-created"
)

func (t PathType) Valid() bool {
	switch t {
	case PathAutomatic, PathCustom, PathUserCreated:
		return true
	}
	return false
}

// Path описывает маршрут, нарисованный пользователем. Порядок Points задаёт порядок обхода.
type Path struct {
	ID            string      `json:"id"`
	RoomID        string      `json:"roomId"`
	Name          string      `json:"name,omitempty"`
	Description   string      `json:"description,omitempty"`
	Points        []PathPoint `json:"points"`
	Type          PathType    `json:"type"`
	CreatedAt     string      `json:"createdAt"`
	UpdatedAt     string      `json:"updatedAt"`
	IsActive      bool        `json:"isActive"`
	EstimatedTime *int        `json:"estimatedTime,omitempty"`
	Distance      *float64    `json:"distance,omitempty"`
}

// ============================================================
// Path authoring state
// ============================================================

type EditMode string

const (
	ModeCreate EditMode = "create"
	ModeEdit   EditMode = "edit"
	ModeView   EditMode = "view"
)

func (m EditMode) Valid() bool {
	switch m {
	case ModeCreate, ModeEdit, ModeView:
		return true
	}
	return false
}

type PathCreationState struct {
	IsCreating         bool        `json:"isCreating"`
	RoomID             string      `json:"roomId"`
	Points             []PathPoint `json:"points"`
	SelectedPointIndex *int        `json:"selectedPointIndex"`
	Mode               EditMode    `json:"mode"`
}

// ============================================================
// Aggregate
// ============================================================

// CampusMapData: единица, которая сохраняется в офлайн-кэш и восстанавливается из него.
type CampusMapData struct {
	Rooms  []Room  `json:"rooms"`
	Events []Event `json:"events"`
	Paths  []Path  `json:"paths,omitempty"`
}
