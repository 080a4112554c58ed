// Package domain models YouBike station data published by Taipei City,
// New Taipei City, and the TDX transport data platform.
//
// # Data Sources
//
// Taipei City publishes a JSON array of stations at
// https://tcgbusfs.blob.core.windows.net/dotapp/youbike/v2/youbike_immediate.json.
// New Taipei City publishes a similar array through its open data portal
// (dataset 010e5b15-3823-4b20-b401-b1cf000550c5). TDX serves per-city station
// metadata and availability as two separate resources behind an OAuth
// client-credentials token.
//
// # Field Conventions
//
// Every value in the direct feeds is text, even counts and coordinates:
//
//	{"sno":"500101001","sna":"YouBike2.0_捷運市府站(3號出口)","act":"1",
//	 "latitude":"25.04","longitude":"121.56",
//	 "available_rent_bikes":"5","available_return_bikes":"10"}
//
// Key names differ by feed. Taipei uses latitude/longitude and
// available_rent_bikes/available_return_bikes; New Taipei uses lat/lng and
// sbi/bemp. Each feed gets its own [Adapter] that maps the record into a
// [SourceRecord], so [Normalize] only deals with one shape.
//
// Service status:
//
//	Direct feeds: act "1" in service, anything else (including absent) is not.
//	TDX: ServiceStatus 1 in service, 0 stopped, 2 paused.
//
// Station names carry a "YouBike2.0_" prefix that is stripped.
//
// District names end in 區. When a record has no district, the first
// 2–3 character run before 區 in the address is used, e.g.
// "新北市板橋區文化路一段" → "板橋區". See [DistrictFromAddress].
//
// # Degradation
//
// Malformed numbers never reject a record: coordinates fall back to 0 and
// counts fall back to 0. Only a missing station ID or an out-of-service
// flag drops a record.
package domain
