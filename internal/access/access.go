// Package access holds the mapping-area visibility rules. Datasets can
// restrict field work to polygon areas allocated per user or per group; the
// predicates here decide which geometries a user may see and edit.
package access

import (
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"go.uber.org/zap"
)

// AllowedRings resolves the polygons of the given mapping areas, dropping
// areas whose stored polygon cannot be parsed. A malformed area must never
// lock a user out of the rest of their allocation.
func AllowedRings(areas []model.MappingArea, logger *zap.SugaredLogger) []*fieldset.Polygon {
	rings := make([]*fieldset.Polygon, 0, len(areas))
	for _, area := range areas {
		ring, err := area.Ring()
		if err != nil {
			if logger != nil {
				logger.Warnf("Skipping mapping area %s: %v", area.ID, err)
			}
			continue
		}
		rings = append(rings, ring)
	}
	return rings
}

// UserHasGeometryAccess reports whether the user may see the geometry given
// the mapping areas allocated to them. Owners and superusers bypass the
// restriction, and an empty allocation means the dataset is unrestricted
// for this user.
func UserHasGeometryAccess(dataset model.Dataset, user model.User, geometry model.Geometry, rings []*fieldset.Polygon) bool {
	if !dataset.EnableMappingAreas {
		return true
	}
	if user.IsSuperuser || dataset.OwnerID == user.ID {
		return true
	}
	if len(rings) == 0 {
		return true
	}

	for _, ring := range rings {
		if ring.Contains(geometry.Longitude, geometry.Latitude) {
			return true
		}
	}
	return false
}

// FilterGeometries keeps only the geometries the user may see.
func FilterGeometries(dataset model.Dataset, user model.User, geometries []model.Geometry, rings []*fieldset.Polygon) []model.Geometry {
	if !dataset.EnableMappingAreas || user.IsSuperuser || dataset.OwnerID == user.ID || len(rings) == 0 {
		return geometries
	}

	visible := make([]model.Geometry, 0, len(geometries))
	for _, geometry := range geometries {
		if UserHasGeometryAccess(dataset, user, geometry, rings) {
			visible = append(visible, geometry)
		}
	}
	return visible
}
