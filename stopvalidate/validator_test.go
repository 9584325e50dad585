package stopvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/dataset"
)

func TestValidate_RejectsFourWays(t *testing.T) {
	v := New(city.NewReference())

	result := v.Validate(dataset.Stop{
		Name:      "AB",
		HasCoords: true,
		Latitude:  91,
		Longitude: -181,
		CityKey:   "туймаада",
	})

	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 4, "name, latitude, longitude, and the blocklisted city key should each fail: %v", result.Errors)
}

func TestValidate_AcceptsWellFormedStop(t *testing.T) {
	v := New(city.NewReference())

	result := v.Validate(dataset.Stop{
		Name:      "Автовокзал Якутск",
		HasCoords: true,
		Latitude:  62.0281,
		Longitude: 129.7326,
		CityKey:   "якутск",
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_MissingCityKey(t *testing.T) {
	v := New(city.NewReference())
	result := v.Validate(dataset.Stop{Name: "Some Stop"})
	assert.False(t, result.Valid)
}

func TestValidate_UnknownCityKey(t *testing.T) {
	v := New(city.NewReference())
	result := v.Validate(dataset.Stop{Name: "Some Stop", CityKey: "неизвестный"})
	assert.False(t, result.Valid)
}

func TestValidate_NoCoordinatesIsAcceptable(t *testing.T) {
	v := New(city.NewReference())
	result := v.Validate(dataset.Stop{Name: "Stop Without Coords", CityKey: "якутск"})
	assert.True(t, result.Valid)
}

func TestIsServiceWord(t *testing.T) {
	assert.True(t, IsServiceWord("вокзал"))
	assert.False(t, IsServiceWord("якутск"))
}
