package tdx

import (
	"bytes"
	"encoding/json"
)

// TDX API response types.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type localizedText struct {
	ZhTw text `json:"Zh_tw"`
	En   text `json:"En"`
}

type stationPosition struct {
	PositionLon text `json:"PositionLon"`
	PositionLat text `json:"PositionLat"`
}

// bikeStation is an element of /v2/Bike/Station/City/{City}.
type bikeStation struct {
	StationUID      text            `json:"StationUID"`
	StationID       text            `json:"StationID"`
	AuthorityID     text            `json:"AuthorityID"`
	StationName     localizedText   `json:"StationName"`
	StationPosition stationPosition `json:"StationPosition"`
	StationAddress  localizedText   `json:"StationAddress"`
}

// bikeAvailability is an element of /v2/Bike/Availability/City/{City}.
type bikeAvailability struct {
	StationUID           text `json:"StationUID"`
	StationID            text `json:"StationID"`
	ServiceStatus        text `json:"ServiceStatus"` // 0 stopped, 1 normal, 2 paused
	AvailableRentBikes   text `json:"AvailableRentBikes"`
	AvailableReturnBikes text `json:"AvailableReturnBikes"`
}

// text captures any JSON scalar as its literal text, so a field that arrives
// as a number, a string, or null never fails the whole response.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	case b[0] == '{', b[0] == '[':
		*t = ""
	default:
		*t = text(b)
	}
	return nil
}
