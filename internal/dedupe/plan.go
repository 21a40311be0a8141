package dedupe

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/allspots/spots-cli/internal/model"
)

// Group is one duplicate group: every record sharing a canonical key, the
// chosen survivor, and the rest slated for deletion.
type Group struct {
	Key      string
	Keeper   model.Record
	ToDelete []model.Record
	All      []model.Record
}

// BuildPlan partitions records by canonical key and emits a plan entry for
// every group with at least two members; singletons are never materialized.
// Pure function, no I/O — a plan can always be previewed (dry run) before
// anything is mutated, which is the main safety mechanism against
// destructive mistakes.
func BuildPlan(records []model.Record) []Group {
	byKey := make(map[string][]model.Record)
	var order []string // first-seen key order keeps the report deterministic
	for _, rec := range records {
		key := CanonicalKey(rec)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], rec)
	}

	var groups []Group
	for _, key := range order {
		items := byKey[key]
		if len(items) <= 1 {
			continue
		}
		keeper := PickKeeper(items)
		toDelete := make([]model.Record, 0, len(items)-1)
		for _, rec := range items {
			if rec.ID != keeper.ID {
				toDelete = append(toDelete, rec)
			}
		}
		groups = append(groups, Group{Key: key, Keeper: keeper, ToDelete: toDelete, All: items})
	}
	return groups
}

// TotalDuplicates counts the records slated for deletion across groups.
func TotalDuplicates(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.ToDelete)
	}
	return n
}

// SpreadMeters reports how far apart the group's members are: the
// great-circle distance across the bounding box of every member with
// coordinates. Identifier-keyed groups can legitimately span hundreds of
// meters (moved venue, re-surveyed node); a large spread on a fallback key
// would instead point at a rounding collision worth eyeballing before
// apply. Returns 0 when fewer than two members carry coordinates.
func (g Group) SpreadMeters() float64 {
	bounds := geom.NewBounds(geom.XY)
	n := 0
	for _, rec := range g.All {
		lat, lng, ok := ExtractCoords(rec.Fields)
		if !ok {
			continue
		}
		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{lng, lat}))
		n++
	}
	if n < 2 {
		return 0
	}
	return haversineMeters(bounds.Min(1), bounds.Min(0), bounds.Max(1), bounds.Max(0))
}

const earthRadiusMeters = 6371000

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
