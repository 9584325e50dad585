package timeutils

import (
	"log"
	"time"
)

const yakutsk = "Asia/Yakutsk"

var _ = Yakutsk() // crash on init if location not available

// Yakutsk gets the location with the correct timezone that virtual trip
// generation stamps its 08:00/16:00 hub departures in.
// Exits the process via log.Fatalf if the location cannot be loaded, which
// happens on an alpine docker image without the timezone data installed.
func Yakutsk() *time.Location {
	loc, err := time.LoadLocation(yakutsk)
	if err != nil {
		log.Fatalf("Could not load location, something is very broken: %s", err.Error())
	}
	return loc
}
