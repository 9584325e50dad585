package city

// Reference is the read-only unified-cities/airports/suburbs lookup:
// loaded once at startup from the fixed tables below, never mutated
// afterward.
type Reference struct {
	cities   map[string]Coordinates
	airports map[string]string
	suburbs  map[string]string
}

// Coordinates is a reference location used to seed virtual stops.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// NewReference builds the unified reference for the regional network this
// engine serves: the Sakha (Yakutia) transport region, with Yakutsk as the
// designated hub city.
func NewReference() *Reference {
	r := &Reference{
		cities: map[string]Coordinates{
			"якутск":        {62.0281, 129.7326},
			"нерюнгри":      {56.6733, 124.6492},
			"мирный":        {62.535, 113.9606},
			"ленск":         {60.7256, 114.9278},
			"алдан":         {58.6058, 125.3897},
			"вилюйск":       {63.7522, 121.6253},
			"олекминск":     {60.3739, 120.425},
			"верхоянск":     {67.5447, 133.3842},
			"среднеколымск": {67.45, 153.6833},
			"усть-нера":     {64.5667, 143.2},
			"зырянка":       {65.7333, 150.8667},
			"тикси":         {71.6356, 128.8694},
			"батагай":       {67.6333, 134.6333},
			"сангар":        {63.9214, 127.4639},
			"хандыга":       {62.6667, 135.6},
			"покровск":      {61.4833, 129.1333},
			"беркакит":      {56.95, 124.7667},
			"жиганск":       {66.7667, 123.3667},
		},
		airports: map[string]string{
			"туймаада": "якутск",
			"маган":    "якутск",
		},
		suburbs: map[string]string{
			"хатассы":  "якутск",
			"марха":    "якутск",
			"птицефабрика": "якутск",
		},
	}
	return r
}

// Accepted reports whether key is a reference city.
func (r *Reference) Accepted(key string) bool {
	_, ok := r.cities[key]
	return ok
}

// Coordinates returns the reference coordinates for a city, if known.
func (r *Reference) Coordinates(key string) (Coordinates, bool) {
	c, ok := r.cities[key]
	return c, ok
}

// Airport resolves an airport token to its main city, if known.
func (r *Reference) Airport(token string) (string, bool) {
	c, ok := r.airports[token]
	return c, ok
}

// Suburb resolves a suburb token to its main city, if known.
func (r *Reference) Suburb(token string) (string, bool) {
	c, ok := r.suburbs[token]
	return c, ok
}

// Cities returns the full set of reference city keys, used by the
// virtual-entity worker to guarantee coverage.
func (r *Reference) Cities() []string {
	keys := make([]string, 0, len(r.cities))
	for k := range r.cities {
		keys = append(keys, k)
	}
	return keys
}

// Hub is the designated central city used as the default transfer point for
// virtual routes.
const Hub = "якутск"
