package access

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/datatypes"
)

func mustRing(t *testing.T, coords [][2]float64) *fieldset.Polygon {
	t.Helper()
	p, err := fieldset.NewPolygon(coords)
	if err != nil {
		t.Fatal(err)
	}
	return &p
}

// A unit square around the origin.
func unitSquare(t *testing.T) *fieldset.Polygon {
	t.Helper()
	return mustRing(t, [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}})
}

func TestUserHasGeometryAccess(t *testing.T) {
	owner := model.User{BaseModel: model.BaseModel{ID: "owner"}}
	worker := model.User{BaseModel: model.BaseModel{ID: "worker"}}
	admin := model.User{BaseModel: model.BaseModel{ID: "admin"}, IsSuperuser: true}

	restricted := model.Dataset{BaseModel: model.BaseModel{ID: "ds"}, OwnerID: owner.ID, EnableMappingAreas: true}
	unrestricted := model.Dataset{BaseModel: model.BaseModel{ID: "ds"}, OwnerID: owner.ID}

	inside := model.Geometry{Longitude: 0.5, Latitude: 0.5}
	outside := model.Geometry{Longitude: 5, Latitude: 5}

	square := []*fieldset.Polygon{unitSquare(t)}

	tests := []struct {
		name     string
		dataset  model.Dataset
		user     model.User
		geometry model.Geometry
		rings    []*fieldset.Polygon
		want     bool
	}{
		{name: "mapping areas disabled", dataset: unrestricted, user: worker, geometry: outside, rings: square, want: true},
		{name: "owner bypasses areas", dataset: restricted, user: owner, geometry: outside, rings: square, want: true},
		{name: "superuser bypasses areas", dataset: restricted, user: admin, geometry: outside, rings: square, want: true},
		{name: "no allocation means unrestricted", dataset: restricted, user: worker, geometry: outside, rings: nil, want: true},
		{name: "point inside allocated area", dataset: restricted, user: worker, geometry: inside, rings: square, want: true},
		{name: "point outside allocated area", dataset: restricted, user: worker, geometry: outside, rings: square, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserHasGeometryAccess(tt.dataset, tt.user, tt.geometry, tt.rings); got != tt.want {
				t.Errorf("UserHasGeometryAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterGeometries(t *testing.T) {
	worker := model.User{BaseModel: model.BaseModel{ID: "worker"}}
	dataset := model.Dataset{BaseModel: model.BaseModel{ID: "ds"}, OwnerID: "owner", EnableMappingAreas: true}

	inside := model.Geometry{BaseModel: model.BaseModel{ID: "in"}, Longitude: 0, Latitude: 0}
	outside := model.Geometry{BaseModel: model.BaseModel{ID: "out"}, Longitude: 9, Latitude: 9}

	got := FilterGeometries(dataset, worker, []model.Geometry{inside, outside}, []*fieldset.Polygon{unitSquare(t)})
	if !reflect.DeepEqual(got, []model.Geometry{inside}) {
		t.Errorf("FilterGeometries() = %v, want only the inside geometry", got)
	}
}

func TestAllowedRingsSkipsMalformedPolygons(t *testing.T) {
	valid, err := json.Marshal(unitSquare(t))
	if err != nil {
		t.Fatal(err)
	}

	areas := []model.MappingArea{
		{BaseModel: model.BaseModel{ID: "ok"}, Polygon: datatypes.JSON(valid)},
		{BaseModel: model.BaseModel{ID: "broken"}, Polygon: datatypes.JSON(`{"type":"Point"}`)},
	}

	rings := AllowedRings(areas, nil)
	if len(rings) != 1 {
		t.Fatalf("AllowedRings() kept %d rings, want 1", len(rings))
	}
	if !rings[0].Contains(0, 0) {
		t.Error("surviving ring should contain the origin")
	}
}
