package shared

// Direction represents market direction.
type Direction int

const (
	Long Direction = iota
	Short
)

// String stringifies the provided direction.
func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// MarshalText encodes the direction as its label.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ZoneKind represents the role of a confluence zone relative to price.
type ZoneKind int

const (
	SupportZone ZoneKind = iota
	ResistanceZone
)

// String stringifies the provided zone kind.
func (k ZoneKind) String() string {
	switch k {
	case SupportZone:
		return "support"
	case ResistanceZone:
		return "resistance"
	default:
		return "unknown"
	}
}

// MarshalText encodes the zone kind as its label.
func (k ZoneKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
