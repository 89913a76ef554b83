package reporting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportd/pkg/contracts/domain"
)

func TestNormalizeRange(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		from      string
		to        string
		wantFrom  *time.Time
		wantTo    *time.Time
		wantBound string
	}{
		{name: "both empty", from: "", to: ""},
		{name: "whitespace is empty", from: "  ", to: "\t"},
		{name: "from only", from: "2024-01-01", wantFrom: &jan1},
		{name: "to only", to: "2024-01-31", wantTo: &jan31},
		{name: "both bounds", from: "2024-01-01", to: "2024-01-31", wantFrom: &jan1, wantTo: &jan31},
		{name: "reversed bounds are kept", from: "2024-01-31", to: "2024-01-01", wantFrom: &jan31, wantTo: &jan1},
		{name: "bad from", from: "01/01/2024", to: "2024-01-31", wantBound: "from"},
		{name: "bad to", from: "2024-01-01", to: "2024-13-01", wantBound: "to"},
		{name: "timestamp is not a date", from: "2024-01-01T10:00:00Z", wantBound: "from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := NormalizeRange(tt.from, tt.to)

			if tt.wantBound != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDate))

				var dateErr *DateError
				require.True(t, errors.As(err, &dateErr))
				assert.Equal(t, tt.wantBound, dateErr.Bound)
				assert.Contains(t, err.Error(), tt.wantBound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, rng.From)
			assert.Equal(t, tt.wantTo, rng.To)
		})
	}
}

func TestDateRange_ContainsIsInclusive(t *testing.T) {
	rng, err := NormalizeRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start of from day", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"late on to day", time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), true},
		{"day before from", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{"day after to", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"middle", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rng.Contains(tt.at))
		})
	}
}

func TestDateRange_ReversedMatchesNothing(t *testing.T) {
	rng, err := NormalizeRange("2024-02-01", "2024-01-01")
	require.NoError(t, err)

	assert.False(t, rng.Contains(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rng.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDateRange_OpenRange(t *testing.T) {
	var rng domain.DateRange
	assert.True(t, rng.IsOpen())
	assert.True(t, rng.Contains(time.Unix(0, 0)))
}
