// Package dataset holds the immutable transport-data snapshot: stops,
// routes, flights, and the Dataset envelope that versions them together.
package dataset

import "time"

// StopKind enumerates the physical kind of a Stop.
type StopKind string

const (
	StopKindAirport        StopKind = "airport"
	StopKindRailway        StopKind = "railway"
	StopKindFerryTerminal  StopKind = "ferry_terminal"
	StopKindGeneric        StopKind = "generic"
)

// TransportKind enumerates the mode of transport a Route operates.
type TransportKind string

const (
	TransportAirplane TransportKind = "airplane"
	TransportBus      TransportKind = "bus"
	TransportTrain    TransportKind = "train"
	TransportFerry    TransportKind = "ferry"
	TransportTaxi     TransportKind = "taxi"
	TransportUnknown  TransportKind = "unknown"
)

// SourceMode enumerates where a Dataset's data came from.
type SourceMode string

const (
	SourceReal     SourceMode = "real"
	SourceRecovery SourceMode = "recovery"
	SourceMock     SourceMode = "mock"
	SourceUnknown  SourceMode = "unknown"
)

// FlightStatus enumerates the lifecycle state of a trip instance.
type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusCancelled FlightStatus = "cancelled"
	FlightStatusCompleted FlightStatus = "completed"
)

// Stop is a physical or virtual boarding point.
type Stop struct {
	ID          string
	Name        string
	HasCoords   bool
	Latitude    float64
	Longitude   float64
	CityKey     string
	Kind        StopKind
	Virtual     bool
}

// Route is an ordered sequence of stop identifiers operated as one line.
// StopIDs must contain at least 2 entries for a valid route.
type Route struct {
	ID          string
	StopIDs     []string
	Kind        TransportKind
	Number      string
	BaseFare    float64
	Virtual     bool

	// HasDistance/DistanceMeters and HasEstimatedDuration/EstimatedDurationMinutes
	// carry the optional per-leg estimates used by the graph builder's weight
	// cascade when no trip schedule is available. They apply
	// uniformly to every consecutive stop pair of this route.
	HasDistance              bool
	DistanceMeters           float64
	HasEstimatedDuration     bool
	EstimatedDurationMinutes float64
}

// Flight is a single timed traversal of one edge: (FromStopID, ToStopID,
// RouteID) plus its schedule and commercial attributes.
type Flight struct {
	ID             string
	FromStopID     string
	ToStopID       string
	RouteID        string
	Departure      time.Time
	Arrival        time.Time
	Price          float64
	AvailableSeats int
	Status         FlightStatus
}

// Valid reports whether the flight's arrival does not precede its departure.
func (f Flight) Valid() bool {
	return !f.Arrival.Before(f.Departure)
}

// Dataset is an immutable snapshot of stops, routes, and flights with
// quality and mode metadata. A zero value is not meaningful; build one
// with New.
type Dataset struct {
	Stops        []Stop
	Routes       []Route
	Flights      []Flight
	SourceMode   SourceMode
	QualityScore int
	Hash         string
	CreatedAt    time.Time
	Version      string
	Active       bool
}

// New constructs a Dataset, computing its quality score from the supplied
// records.
func New(stops []Stop, routes []Route, flights []Flight, mode SourceMode, hash, version string, createdAt time.Time) Dataset {
	return Dataset{
		Stops:        stops,
		Routes:       routes,
		Flights:      flights,
		SourceMode:   mode,
		QualityScore: QualityScore(stops, routes, flights),
		Hash:         hash,
		CreatedAt:    createdAt,
		Version:      version,
	}
}

// StopByID returns the stop with the given id, if present.
func (d Dataset) StopByID(id string) (Stop, bool) {
	for _, s := range d.Stops {
		if s.ID == id {
			return s, true
		}
	}
	return Stop{}, false
}

// FlightsForEdge returns the flights traversing exactly the (from, to,
// route) edge, preserving dataset order.
func (d Dataset) FlightsForEdge(fromStopID, toStopID, routeID string) []Flight {
	var out []Flight
	for _, f := range d.Flights {
		if f.FromStopID == fromStopID && f.ToStopID == toStopID && f.RouteID == routeID {
			out = append(out, f)
		}
	}
	return out
}
