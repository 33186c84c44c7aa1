package views

import (
	"sync"

	"github.com/ray-remotestate/posgate/models"
)

// FloorView is the waiter floor map: the latest snapshot plus the table whose
// detail modal is open.
type FloorView struct {
	mu       sync.Mutex
	floors   []models.Floor
	selected *models.Table
	loaded   bool
	err      error
}

// FindTable looks a table up by id across every floor.
func FindTable(floors []models.Floor, id string) (models.Table, bool) {
	for _, f := range floors {
		for _, t := range f.Tables {
			if t.ID == id {
				return t, true
			}
		}
	}
	return models.Table{}, false
}

// Apply replaces the snapshot and re-points the selection at the fresh copy of
// the same table. If the selected table is gone the selection is cleared and
// Apply returns its id.
func (v *FloorView) Apply(floors []models.Floor) (lostTableID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.floors = floors
	v.loaded = true
	v.err = nil
	if v.selected == nil {
		return ""
	}
	if t, ok := FindTable(floors, v.selected.ID); ok {
		v.selected = &t
		return ""
	}
	lost := v.selected.ID
	v.selected = nil
	return lost
}

// SetError records a failed refresh. The last good snapshot stays on screen.
func (v *FloorView) SetError(err error) {
	v.mu.Lock()
	v.err = err
	v.mu.Unlock()
}

// Select opens the table's modal if the table is in the current snapshot.
func (v *FloorView) Select(tableID string) (models.Table, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := FindTable(v.floors, tableID)
	if !ok {
		return models.Table{}, false
	}
	v.selected = &t
	return t, true
}

func (v *FloorView) Deselect() {
	v.mu.Lock()
	v.selected = nil
	v.mu.Unlock()
}

func (v *FloorView) Selected() (models.Table, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return models.Table{}, false
	}
	return *v.selected, true
}

type TableDetail struct {
	models.Table
	Actions TableActions `json:"actions"`
}

type FloorSnapshot struct {
	Loaded   bool           `json:"loaded"`
	Floors   []models.Floor `json:"floors"`
	Floor    int            `json:"floor"`
	Tables   []models.Table `json:"tables"`
	Selected *TableDetail   `json:"selected"`
	Error    string         `json:"error,omitempty"`
}

// Snapshot renders the view with floor idx as the visible plan.
func (v *FloorView) Snapshot(idx int) FloorSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := FloorSnapshot{Loaded: v.loaded, Floors: v.floors, Floor: idx}
	if s.Floors == nil {
		s.Floors = []models.Floor{}
	}
	if idx >= 0 && idx < len(v.floors) {
		s.Tables = v.floors[idx].Tables
	}
	if s.Tables == nil {
		s.Tables = []models.Table{}
	}
	if v.selected != nil {
		s.Selected = &TableDetail{Table: *v.selected, Actions: Actions(*v.selected)}
	}
	if v.err != nil {
		s.Error = v.err.Error()
	}
	return s
}
