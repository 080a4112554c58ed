package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSnapshot_Clean(t *testing.T) {
	sum := CheckSnapshot([]Station{
		{ID: "1", City: CityTaipei, Lat: 25.0, Lng: 121.5, Bikes: 1},
		{ID: "2", City: CityNewTaipei},
		{ID: "3", City: CityNewTaipei, Docks: 4},
	})

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.ByCity[CityTaipei])
	assert.Equal(t, 2, sum.ByCity[CityNewTaipei])
	assert.Empty(t, sum.Problems)
}

func TestCheckSnapshot_Problems(t *testing.T) {
	sum := CheckSnapshot([]Station{
		{ID: "1", City: CityTaipei},
		{ID: "1", City: CityTaipei},
		{ID: "", City: CityTaipei},
		{ID: "4", City: "Taoyuan"},
		{ID: "5", City: CityTaipei, Bikes: -1},
		{ID: "6", City: CityTaipei, Lat: 91},
	})

	assert.Len(t, sum.Problems, 5)
	assert.Contains(t, sum.Problems[0], "duplicate sno 1")
	assert.Contains(t, sum.Problems[1], "empty sno")
	assert.Contains(t, sum.Problems[2], "unknown city")
	assert.Contains(t, sum.Problems[3], "negative counts")
	assert.Contains(t, sum.Problems[4], "out-of-range")
}
