package valueobjects

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", d.String())
	assert.False(t, d.IsZero())

	for _, input := range []string{"", "2026-3-10", "10-03-2026", "2026-03-10T12:00:00Z", "not a day"} {
		_, err := ParseDay(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestNewDayTruncates(t *testing.T) {
	moment := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	d := NewDay(moment)

	assert.Equal(t, "2026-03-10", d.String())
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d.Time())
}

func TestDayEquals(t *testing.T) {
	a := NewDay(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	b := NewDay(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC))
	c := NewDay(time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC))

	assert.True(t, a.Equals(b), "same calendar day regardless of time")
	assert.False(t, a.Equals(c))
}

func TestDayJSON(t *testing.T) {
	d, err := ParseDay("2026-03-10")
	require.NoError(t, err)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-10"`, string(raw))

	var decoded Day
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, d.Equals(decoded))

	t.Run("rejects malformed values", func(t *testing.T) {
		var d Day
		assert.Error(t, json.Unmarshal([]byte(`"03/10/2026"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`20260310`), &d))
	})

	t.Run("null leaves the zero value", func(t *testing.T) {
		var d Day
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})
}
