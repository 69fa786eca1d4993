package confluence

import (
	"math"
	"sort"

	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/priceaction"
	"github.com/dnldd/chimera/shared"
)

const (
	// clusterThreshold is the maximum relative distance between adjacent levels of
	// the same zone.
	clusterThreshold = 0.005
	// minZoneLevels is the minimum number of levels forming a zone.
	minZoneLevels = 2
)

// Zone represents a price band where multiple levels cluster.
type Zone struct {
	Low     float64         `json:"low"`
	High    float64         `json:"high"`
	Score   float64         `json:"score"`
	Reasons []string        `json:"reasons"`
	Kind    shared.ZoneKind `json:"type"`
}

// Contains checks whether the provided price falls within the zone, inclusive of
// its edges.
func (z *Zone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// Mid returns the midpoint of the zone.
func (z *Zone) Mid() float64 {
	return (z.Low + z.High) / 2
}

// newZone creates a zone from the provided clustered levels.
func newZone(cluster []Level, lastStableClose float64) Zone {
	zone := Zone{
		Low:     math.Inf(1),
		High:    math.Inf(-1),
		Reasons: make([]string, 0, len(cluster)),
	}

	var score float64
	for idx := range cluster {
		zone.Low = math.Min(zone.Low, cluster[idx].Price)
		zone.High = math.Max(zone.High, cluster[idx].Price)
		score += cluster[idx].Score
		zone.Reasons = append(zone.Reasons, cluster[idx].Description)
	}

	zone.Score = indicator.Round(score, 2)
	sort.Strings(zone.Reasons)

	zone.Kind = shared.SupportZone
	if zone.Mid() > lastStableClose {
		zone.Kind = shared.ResistanceZone
	}

	return zone
}

// FindZones clusters the levels of the provided reports into scored confluence
// zones, ordered by score descending. A level joins the current cluster when it is
// within the cluster threshold of the previously added level. Clusters with a single
// level are discarded. Zones are typed against the provided last stable close.
func FindZones(reports []*priceaction.Report, lastStableClose float64) []Zone {
	var levels []Level
	for idx := range reports {
		levels = append(levels, ExtractLevels(reports[idx])...)
	}

	return clusterLevels(levels, lastStableClose)
}

// clusterLevels groups price sorted levels into zones.
func clusterLevels(levels []Level, lastStableClose float64) []Zone {
	if len(levels) == 0 {
		return nil
	}

	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Price < levels[j].Price
	})

	var zones []Zone
	flush := func(cluster []Level) {
		if len(cluster) >= minZoneLevels {
			zones = append(zones, newZone(cluster, lastStableClose))
		}
	}

	cluster := []Level{levels[0]}
	for idx := 1; idx < len(levels); idx++ {
		prev := cluster[len(cluster)-1].Price
		if prev > 0 && levels[idx].Price-prev <= prev*clusterThreshold {
			cluster = append(cluster, levels[idx])
			continue
		}

		flush(cluster)
		cluster = []Level{levels[idx]}
	}
	flush(cluster)

	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].Score > zones[j].Score
	})

	return zones
}
