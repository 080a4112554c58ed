package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// namePrefix is prepended to every YouBike 2.0 station name upstream.
const namePrefix = "YouBike2.0_"

var (
	// ErrMissingID marks a record without a station identifier.
	ErrMissingID = errors.New("missing station id")
	// ErrInactive marks a record whose service flag is off.
	ErrInactive = errors.New("station not in service")
)

// districtRe matches 2-3 characters followed by 區, e.g. "板橋區".
// 市 and 縣 are excluded so "新北市板橋區" does not match as "市板橋區".
var districtRe = regexp.MustCompile(`[^\s市縣]{2,3}區`)

// Normalize converts a SourceRecord into a Station. It returns ErrMissingID or
// ErrInactive (wrapped) for records that must be skipped. Malformed numeric
// fields never produce an error.
func Normalize(rec SourceRecord) (Station, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return Station{}, ErrMissingID
	}
	if !rec.Active {
		return Station{}, fmt.Errorf("station %s: %w", id, ErrInactive)
	}

	district := strings.TrimSpace(rec.District)
	if district == "" {
		district = DistrictFromAddress(rec.Address)
	}

	return Station{
		ID:       id,
		Name:     strings.TrimPrefix(rec.Name, namePrefix),
		District: district,
		Address:  rec.Address,
		Lat:      ParseFloatOr(rec.Lat, 0),
		Lng:      ParseFloatOr(rec.Lng, 0),
		City:     rec.City,
		Bikes:    ParseCountOr(rec.Rent, 0),
		Docks:    ParseCountOr(rec.Return, 0),
	}, nil
}

// DistrictFromAddress extracts the first district name from an address, or ""
// if there is none.
func DistrictFromAddress(address string) string {
	return districtRe.FindString(address)
}

// ParseFloatOr parses s as a finite float64, returning def on failure.
func ParseFloatOr(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// ParseCountOr parses s as a non-negative decimal integer made only of ASCII
// digits, returning def otherwise. Signs, decimals, and exponents are rejected.
func ParseCountOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return def
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
