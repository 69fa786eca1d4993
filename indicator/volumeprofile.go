package indicator

import (
	"math"
	"sort"

	"github.com/dnldd/chimera/shared"
)

const (
	// DefaultProfileBins is the default number of volume profile price buckets.
	DefaultProfileBins = 50
	// valueAreaShare is the share of total volume covered by the value area.
	valueAreaShare = 0.7
	// migrationThreshold is the relative point of control shift considered migration.
	migrationThreshold = 0.002
)

// Value area positions of the last close.
const (
	AboveValueArea  = "Above Value Area (Bullish)"
	BelowValueArea  = "Below Value Area (Bearish)"
	InsideValueArea = "Inside Value Area (Neutral)"
)

// HVN migration statuses.
const (
	MigratingUp   = "Migrating Up (Bullish)"
	MigratingDown = "Migrating Down (Bearish)"
	Stagnant      = "Stagnant (Neutral)"
	Indeterminate = "Indeterminate"
)

// Profile represents the volume distribution of a window of candles.
type Profile struct {
	POC      float64
	VAH      float64
	VAL      float64
	Position string
	// Error describes why the profile could not be built. Empty when the profile
	// is valid.
	Error string
}

// Valid checks whether the profile was built.
func (p *Profile) Valid() bool {
	return p.Error == ""
}

// VolumeProfile builds a volume-by-price histogram over equal width buckets spanning
// the low/high range of the provided candles. Each candle's volume lands in the
// bucket containing its close; closes at the range high land in the top bucket.
// Bucket prices are bucket starts.
func VolumeProfile(candles []shared.Candlestick, bins int) Profile {
	if len(candles) == 0 {
		return Profile{POC: null, VAH: null, VAL: null, Error: "empty data"}
	}
	if bins <= 0 {
		bins = DefaultProfileBins
	}

	low := lowest(shared.Lows(candles))
	high := highest(shared.Highs(candles))
	if high == low {
		return Profile{POC: null, VAH: null, VAL: null, Error: "no price range"}
	}

	size := (high - low) / float64(bins)
	volumes := make([]float64, bins)
	for idx := range candles {
		bin := int(math.Floor((candles[idx].Close - low) / size))
		switch {
		case bin < 0:
			bin = 0
		case bin >= bins:
			bin = bins - 1
		}
		volumes[bin] += candles[idx].Volume
	}

	start := func(bin int) float64 {
		return low + float64(bin)*size
	}

	// Ties resolve to the higher bucket.
	poc := 0
	var total float64
	for bin := range volumes {
		total += volumes[bin]
		if volumes[bin] >= volumes[poc] {
			poc = bin
		}
	}

	order := make([]int, bins)
	for bin := range order {
		order[bin] = bin
	}
	sort.SliceStable(order, func(i, j int) bool {
		return volumes[order[i]] > volumes[order[j]]
	})

	target := total * valueAreaShare
	var cumulative float64
	vah, val := math.Inf(-1), math.Inf(1)
	for _, bin := range order {
		if cumulative > target {
			break
		}
		cumulative += volumes[bin]
		vah = math.Max(vah, start(bin))
		val = math.Min(val, start(bin))
	}

	last := candles[len(candles)-1].Close
	position := InsideValueArea
	switch {
	case last > vah:
		position = AboveValueArea
	case last < val:
		position = BelowValueArea
	}

	return Profile{
		POC:      Round(start(poc), 5),
		VAH:      Round(vah, 5),
		VAL:      Round(val, 5),
		Position: position,
	}
}

// HVNMigration classifies the shift between the points of control of two
// consecutive windows.
func HVNMigration(pocFirst float64, pocSecond float64) string {
	if IsNull(pocFirst) || IsNull(pocSecond) || pocFirst == 0 {
		return Indeterminate
	}

	diff := (pocSecond - pocFirst) / pocFirst
	switch {
	case diff > migrationThreshold:
		return MigratingUp
	case diff < -migrationThreshold:
		return MigratingDown
	default:
		return Stagnant
	}
}
