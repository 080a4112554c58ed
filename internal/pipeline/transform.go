package pipeline

import (
	"errors"
	"fmt"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
)

// Skip reasons, used as the "reason" label of RecordsSkipped.
const (
	reasonMissingID = "missing_id"
	reasonInactive  = "inactive"
	reasonInvalid   = "invalid"
)

// normalize converts one record, returning the skip reason when the record
// must be dropped.
func normalize(rec domain.SourceRecord) (domain.Station, string, error) {
	st, err := domain.Normalize(rec)
	if err != nil {
		return domain.Station{}, skipReason(err), err
	}
	if !st.City.Valid() {
		return domain.Station{}, reasonInvalid, fmt.Errorf("station %s: unknown city %q", st.ID, st.City)
	}
	return st, "", nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingID):
		return reasonMissingID
	case errors.Is(err, domain.ErrInactive):
		return reasonInactive
	default:
		return reasonInvalid
	}
}
