package reporting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"reportd/pkg/contracts/domain"
)

// DateLayout is the accepted format of the from and to request values
const DateLayout = "2006-01-02"

// ErrInvalidDate is matched by every date parsing failure
var ErrInvalidDate = errors.New("invalid date")

// DateError reports which bound of a range could not be parsed
type DateError struct {
	Bound string
	Value string
	Err   error
}

// Error implements the error interface
func (e *DateError) Error() string {
	return fmt.Sprintf("invalid %s date %q: expected YYYY-MM-DD", e.Bound, e.Value)
}

// Unwrap returns the underlying parse error
func (e *DateError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidDate) hold for any DateError
func (e *DateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// NormalizeRange parses optional from and to values into a DateRange.
// Blank values leave that side of the range open. No ordering correction is
// applied: from after to yields a range that matches nothing.
func NormalizeRange(fromRaw, toRaw string) (domain.DateRange, error) {
	var rng domain.DateRange

	from, err := parseBound("from", fromRaw)
	if err != nil {
		return domain.DateRange{}, err
	}
	rng.From = from

	to, err := parseBound("to", toRaw)
	if err != nil {
		return domain.DateRange{}, err
	}
	rng.To = to

	return rng, nil
}

func parseBound(bound, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return nil, &DateError{Bound: bound, Value: raw, Err: err}
	}
	return &t, nil
}
