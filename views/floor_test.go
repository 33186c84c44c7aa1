package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/posgate/models"
)

func floorsWith(tables ...models.Table) []models.Floor {
	return []models.Floor{
		{ID: "f1", Name: "Main", Tables: []models.Table{{ID: "t0", Name: "Bar", Status: models.TableAvailable}}},
		{ID: "f2", Name: "Terrace", Tables: tables},
	}
}

func TestApplyRepointsSelectionAtFreshTable(t *testing.T) {
	v := &FloorView{}
	v.Apply(floorsWith(models.Table{ID: "t1", Name: "1", Status: models.TableAvailable}))
	_, ok := v.Select("t1")
	require.True(t, ok)

	updated := models.Table{ID: "t1", Name: "1", Status: models.TableOccupied, Orders: []models.Order{{ID: "o1"}}}
	lost := v.Apply(floorsWith(updated))

	assert.Empty(t, lost)
	got, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, updated, got)
}

func TestApplyClearsSelectionWhenTableDisappears(t *testing.T) {
	v := &FloorView{}
	v.Apply(floorsWith(models.Table{ID: "t1", Status: models.TableAvailable}))
	v.Select("t1")

	lost := v.Apply(floorsWith(models.Table{ID: "t2", Status: models.TableAvailable}))

	assert.Equal(t, "t1", lost)
	_, ok := v.Selected()
	assert.False(t, ok)
	assert.Nil(t, v.Snapshot(0).Selected)
}

func TestApplyWithoutSelection(t *testing.T) {
	v := &FloorView{}
	assert.Empty(t, v.Apply(floorsWith()))
	_, ok := v.Selected()
	assert.False(t, ok)
}

func TestSelectUnknownTable(t *testing.T) {
	v := &FloorView{}
	v.Apply(floorsWith())
	_, ok := v.Select("nope")
	assert.False(t, ok)
}

func TestErrorKeepsLastSnapshot(t *testing.T) {
	v := &FloorView{}
	v.Apply(floorsWith(models.Table{ID: "t1"}))
	v.SetError(errors.New("upstream down"))

	s := v.Snapshot(1)
	assert.Equal(t, "upstream down", s.Error)
	assert.Len(t, s.Tables, 1)

	v.Apply(floorsWith(models.Table{ID: "t1"}))
	assert.Empty(t, v.Snapshot(1).Error)
}

func TestSnapshotOutOfRangeFloor(t *testing.T) {
	v := &FloorView{}
	s := v.Snapshot(3)
	assert.False(t, s.Loaded)
	assert.Empty(t, s.Tables)
	assert.NotNil(t, s.Floors)
}

func TestActions(t *testing.T) {
	withOrder := []models.Order{{ID: "o1"}}
	cases := []struct {
		name  string
		table models.Table
		want  TableActions
	}{
		{"available", models.Table{Status: models.TableAvailable}, TableActions{Occupy: true}},
		{"occupied empty", models.Table{Status: models.TableOccupied}, TableActions{TakeOrder: true, Free: true, Hint: "cannot charge a table without an order"}},
		{"occupied with order", models.Table{Status: models.TableOccupied, Orders: withOrder}, TableActions{TakeOrder: true, Pay: true}},
		{"paid", models.Table{Status: models.TablePaid, Orders: withOrder}, TableActions{Free: true}},
		{"reserved", models.Table{Status: models.TableReserved}, TableActions{}},
		{"disabled", models.Table{Status: models.TableDisabled}, TableActions{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Actions(tc.table))
		})
	}
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, CheckTransition(models.Table{Status: models.TableAvailable}, models.TableOccupied))
	assert.ErrorIs(t, CheckTransition(models.Table{Status: models.TableReserved}, models.TableOccupied), ErrActionNotAllowed)
	assert.ErrorIs(t, CheckTransition(models.Table{Status: models.TableOccupied, Orders: []models.Order{{ID: "o"}}}, models.TableAvailable), ErrActionNotAllowed)
	assert.NoError(t, CheckTransition(models.Table{Status: models.TablePaid}, models.TableAvailable))
	assert.ErrorIs(t, CheckTransition(models.Table{Status: models.TableAvailable}, models.TableDisabled), ErrActionNotAllowed)

	assert.ErrorIs(t, CheckSale(models.Table{Status: models.TableOccupied}), ErrActionNotAllowed)
	assert.NoError(t, CheckSale(models.Table{Status: models.TableOccupied, Orders: []models.Order{{ID: "o"}}}))
}
