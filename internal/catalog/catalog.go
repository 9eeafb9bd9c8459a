// Package catalog holds the static product reference data the recommendation
// engine scores against. The catalog is immutable and shared read-only across
// all sessions; declaration order matters, because the scorer's stable sort
// breaks score ties by it.
package catalog

// ProductType distinguishes pure sport frames from RX-oriented configurations.
type ProductType string

const (
	Sport ProductType = "sport"
	RX    ProductType = "rx"
)

// Entry is one candidate product with the attributes used for scoring.
type Entry struct {
	ID              string
	Name            string
	Type            ProductType
	RXCompatible    bool
	RXModes         []string
	Terrain         []string
	Light           []string
	SportPriorities []string
	RXPriorities    []string
	ShortReason     string
}

// HasTerrain reports whether t is one of the entry's suited terrains.
func (e Entry) HasTerrain(t string) bool { return contains(e.Terrain, t) }

// HasLight reports whether l is one of the entry's suited light conditions.
func (e Entry) HasLight(l string) bool { return contains(e.Light, l) }

// HasSportPriority reports whether p is among the entry's sport priorities.
func (e Entry) HasSportPriority(p string) bool { return contains(e.SportPriorities, p) }

// HasRXPriority reports whether p is among the entry's RX priorities.
func (e Entry) HasRXPriority(p string) bool { return contains(e.RXPriorities, p) }

// HasRXMode reports whether m is among the entry's RX mounting modes.
func (e Entry) HasRXMode(m string) bool { return contains(e.RXModes, m) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Default returns the built-in SCICON catalog.
func Default() []Entry {
	return []Entry{
		{
			ID:              "aerotrail_photo",
			Name:            "SCICON Aerotrail Photochromic",
			Type:            Sport,
			RXCompatible:    true,
			RXModes:         []string{"clip_in"},
			Terrain:         []string{"strada", "gravel"},
			Light:           []string{"variabile"},
			SportPriorities: []string{"protezione", "ventilazione", "comfort"},
			ShortReason:     "lente fotocromatica molto versatile, montatura leggera e buona ventilazione.",
		},
		{
			ID:              "aeroshade",
			Name:            "SCICON Aeroshade Performance",
			Type:            Sport,
			RXCompatible:    true,
			RXModes:         []string{"clip_in"},
			Terrain:         []string{"strada", "gravel"},
			Light:           []string{"stabile", "variabile"},
			SportPriorities: []string{"protezione", "comfort"},
			ShortReason:     "schermo ampio, copertura massima e look molto racing.",
		},
		{
			ID:              "aerowing",
			Name:            "SCICON Aerowing",
			Type:            Sport,
			RXCompatible:    false,
			Terrain:         []string{"strada"},
			Light:           []string{"stabile"},
			SportPriorities: []string{"protezione", "comfort"},
			ShortReason:     "occhiale iconico, ottima protezione e forte identità estetica.",
		},
		{
			ID:              "aero_rx_clip",
			Name:            "SCICON Aeroshade + Clip-in RX",
			Type:            RX,
			RXCompatible:    true,
			RXModes:         []string{"clip_in"},
			Terrain:         []string{"strada", "gravel"},
			Light:           []string{"variabile", "stabile"},
			SportPriorities: []string{"protezione", "comfort"},
			RXPriorities:    []string{"campo_visivo", "stabilita"},
			ShortReason:     "base performance Aeroshade con inserto ottico stabile e campo visivo ampio.",
		},
		{
			ID:              "aero_rx_sport",
			Name:            "SCICON Sport RX dedicato",
			Type:            RX,
			RXCompatible:    true,
			RXModes:         []string{"sport_rx"},
			Terrain:         []string{"strada"},
			Light:           []string{"stabile", "variabile"},
			SportPriorities: []string{"comfort", "protezione"},
			RXPriorities:    []string{"comfort", "estetica", "campo_visivo"},
			ShortReason:     "montatura pensata per lenti graduate dedicate, molto pulita e vicina a un occhiale tradizionale.",
		},
	}
}
