package pathedit

import (
	"errors"
	"fmt"
	"time"

	"campus-map/internal/campus/models"

	"github.com/google/uuid"
)

var (
	ErrNotCreating = errors.New("path authoring is not active")
	ErrReadOnly    = errors.New("draft is in view mode")
	ErrPointIndex  = errors.New("point index out of range")
	ErrEmptyPath   = errors.New("path has no points")
	ErrNoRoom      = errors.New("room id required")
)

// ============================================================
// Draft
// ============================================================

// Draft хранит рабочий буфер рисования маршрута. Живёт от Start/Edit до Save или Cancel.
type Draft struct {
	state    models.PathCreationState
	original *models.Path
}

// Start начинает рисование нового маршрута к комнате roomID.
func Start(roomID string) (*Draft, error) {
	if roomID == "" {
		return nil, ErrNoRoom
	}
	return &Draft{
		state: models.PathCreationState{
			IsCreating: true,
			RoomID:     roomID,
			Points:     []models.PathPoint{},
			Mode:       models.ModeCreate,
		},
	}, nil
}

// Edit открывает существующий маршрут на редактирование. Точки копируются.
func Edit(path models.Path) *Draft {
	original := path
	original.Points = clonePoints(path.Points)
	return &Draft{
		state: models.PathCreationState{
			IsCreating: true,
			RoomID:     path.RoomID,
			Points:     clonePoints(path.Points),
			Mode:       models.ModeEdit,
		},
		original: &original,
	}
}

// View открывает маршрут только для просмотра.
func View(path models.Path) *Draft {
	d := Edit(path)
	d.state.Mode = models.ModeView
	return d
}

// State возвращает копию текущего состояния.
func (d *Draft) State() models.PathCreationState {
	s := d.state
	s.Points = clonePoints(d.state.Points)
	if d.state.SelectedPointIndex != nil {
		idx := *d.state.SelectedPointIndex
		s.SelectedPointIndex = &idx
	}
	return s
}

// Clone возвращает независимую копию черновика.
func (d *Draft) Clone() *Draft {
	c := &Draft{state: d.State()}
	if d.original != nil {
		original := *d.original
		original.Points = clonePoints(d.original.Points)
		c.original = &original
	}
	return c
}

func (d *Draft) Points() []models.PathPoint {
	return clonePoints(d.state.Points)
}

func (d *Draft) mutable() error {
	if !d.state.IsCreating {
		return ErrNotCreating
	}
	if d.state.Mode == models.ModeView {
		return ErrReadOnly
	}
	return nil
}

func (d *Draft) checkIndex(i int) error {
	if i < 0 || i >= len(d.state.Points) {
		return fmt.Errorf("%w: %d (len %d)", ErrPointIndex, i, len(d.state.Points))
	}
	return nil
}

// ============================================================
// Point operations
// ============================================================

func (d *Draft) AddPoint(p models.PathPoint) error {
	if err := d.mutable(); err != nil {
		return err
	}
	d.state.Points = append(d.state.Points, p)
	return nil
}

// InsertPoint вставляет точку перед позицией i; i == len добавляет в конец.
func (d *Draft) InsertPoint(i int, p models.PathPoint) error {
	if err := d.mutable(); err != nil {
		return err
	}
	if i < 0 || i > len(d.state.Points) {
		return fmt.Errorf("%w: %d (len %d)", ErrPointIndex, i, len(d.state.Points))
	}
	d.state.Points = append(d.state.Points, models.PathPoint{})
	copy(d.state.Points[i+1:], d.state.Points[i:])
	d.state.Points[i] = p

	if sel := d.state.SelectedPointIndex; sel != nil && *sel >= i {
		next := *sel + 1
		d.state.SelectedPointIndex = &next
	}
	return nil
}

func (d *Draft) MovePoint(i int, x, y float64) error {
	if err := d.mutable(); err != nil {
		return err
	}
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.state.Points[i].X = x
	d.state.Points[i].Y = y
	return nil
}

// DeletePoint удаляет точку и сдвигает выделение, если оно стояло после неё.
func (d *Draft) DeletePoint(i int) error {
	if err := d.mutable(); err != nil {
		return err
	}
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.state.Points = append(d.state.Points[:i], d.state.Points[i+1:]...)

	if sel := d.state.SelectedPointIndex; sel != nil {
		switch {
		case *sel == i:
			d.state.SelectedPointIndex = nil
		case *sel > i:
			prev := *sel - 1
			d.state.SelectedPointIndex = &prev
		}
	}
	return nil
}

func (d *Draft) Select(i int) error {
	if !d.state.IsCreating {
		return ErrNotCreating
	}
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.state.SelectedPointIndex = &i
	return nil
}

func (d *Draft) ClearSelection() {
	d.state.SelectedPointIndex = nil
}

// ============================================================
// Lifecycle
// ============================================================

type Meta struct {
	Name        string
	Description string
}

// Save собирает Path из буфера и закрывает черновик.
// В режиме edit сохраняются id, тип и createdAt исходного маршрута.
func (d *Draft) Save(meta Meta, now time.Time, m Measure) (models.Path, error) {
	if err := d.mutable(); err != nil {
		return models.Path{}, err
	}
	if len(d.state.Points) == 0 {
		return models.Path{}, ErrEmptyPath
	}

	stamp := now.UTC().Format(time.RFC3339)
	path := models.Path{
		ID:        uuid.NewString(),
		RoomID:    d.state.RoomID,
		Type:      models.PathUserCreated,
		CreatedAt: stamp,
		IsActive:  true,
	}
	if d.original != nil {
		path = *d.original
	}

	path.Points = clonePoints(d.state.Points)
	path.UpdatedAt = stamp
	if meta.Name != "" {
		path.Name = meta.Name
	}
	if meta.Description != "" {
		path.Description = meta.Description
	}

	meters := m.Distance(path.Points)
	minutes := m.EstimateMinutes(meters)
	path.Distance = &meters
	path.EstimatedTime = &minutes

	d.discard()
	return path, nil
}

// Cancel отбрасывает черновик без сохранения.
func (d *Draft) Cancel() {
	d.discard()
}

func (d *Draft) discard() {
	d.state = models.PathCreationState{Mode: d.state.Mode}
	d.original = nil
}

func clonePoints(points []models.PathPoint) []models.PathPoint {
	out := make([]models.PathPoint, len(points))
	copy(out, points)
	return out
}
