package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// City is the provenance tag of a station.
type City string

const (
	CityTaipei    City = "Taipei"
	CityNewTaipei City = "New Taipei"
)

// Valid reports whether c is one of the known cities.
func (c City) Valid() bool {
	return c == CityTaipei || c == CityNewTaipei
}

// RawStationRecord is one decoded element of a direct feed response.
// Numbers are expected to be decoded as json.Number.
type RawStationRecord map[string]any

// Text returns the first non-empty value among keys, rendered as text.
// Missing keys, nulls, and nested objects yield "".
func (r RawStationRecord) Text(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case json.Number:
			s = t.String()
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(t)
		default:
			continue
		}
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// SourceRecord is a station mapped out of a source-specific shape but not yet
// validated or coerced.
type SourceRecord struct {
	ID       string
	Name     string
	District string
	Address  string
	Lat      string
	Lng      string
	Rent     string // bikes available to rent
	Return   string // empty docks
	Active   bool
	City     City
}

// Station is the unified record written to the output file.
type Station struct {
	ID       string  `json:"sno"`
	Name     string  `json:"sna"`
	District string  `json:"sarea"`
	Address  string  `json:"ar"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	City     City    `json:"city"`
	Bikes    int     `json:"sbi"`
	Docks    int     `json:"bemp"`
}
