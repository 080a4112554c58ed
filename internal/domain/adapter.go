package domain

import "strings"

// Adapter maps one raw feed record to a SourceRecord. Adapters never set City;
// the fetcher that owns the feed does.
type Adapter func(RawStationRecord) SourceRecord

// TaipeiRecord maps a record from the Taipei City YouBike 2.0 feed.
func TaipeiRecord(raw RawStationRecord) SourceRecord {
	return SourceRecord{
		ID:       raw.Text("sno"),
		Name:     raw.Text("sna"),
		District: raw.Text("sarea"),
		Address:  raw.Text("ar"),
		Lat:      raw.Text("latitude", "lat"),
		Lng:      raw.Text("longitude", "lng"),
		Rent:     raw.Text("available_rent_bikes", "sbi"),
		Return:   raw.Text("available_return_bikes", "bemp"),
		Active:   isActFlagOn(raw.Text("act")),
	}
}

// NewTaipeiRecord maps a record from the New Taipei City open data feed.
func NewTaipeiRecord(raw RawStationRecord) SourceRecord {
	return SourceRecord{
		ID:       raw.Text("sno"),
		Name:     raw.Text("sna"),
		District: raw.Text("sarea"),
		Address:  raw.Text("ar"),
		Lat:      raw.Text("lat", "latitude"),
		Lng:      raw.Text("lng", "longitude"),
		Rent:     raw.Text("sbi", "available_rent_bikes"),
		Return:   raw.Text("bemp", "available_return_bikes"),
		Active:   isActFlagOn(raw.Text("act")),
	}
}

func isActFlagOn(act string) bool {
	return strings.TrimSpace(act) == "1"
}
