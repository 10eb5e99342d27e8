package elevation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gtrack/internal/track"
)

func ele(v float64) *float64 { return track.Meters(v) }

func TestDeltas(t *testing.T) {
	t.Parallel()

	tr := track.Track{
		{Elevation: ele(100)},
		{Elevation: ele(150)},
		{Elevation: ele(90)},
	}

	d := Deltas(tr)
	require.Len(t, d, 3)
	require.NotNil(t, d[0])
	require.NotNil(t, d[1])
	assert.Equal(t, 50.0, *d[0])
	assert.Equal(t, -60.0, *d[1])
	assert.Nil(t, d[2], "last delta has no successor")
}

func TestDeltasUnknownElevation(t *testing.T) {
	t.Parallel()

	tr := track.Track{
		{Elevation: ele(100)},
		{},
		{Elevation: ele(200)},
		{Elevation: ele(180)},
	}

	d := Deltas(tr)
	assert.Nil(t, d[0])
	assert.Nil(t, d[1])
	require.NotNil(t, d[2])
	assert.Equal(t, -20.0, *d[2])

	ascent, descent := Aggregate(d)
	assert.Zero(t, ascent, "steps around the unknown sample must not count")
	assert.Equal(t, 20.0, descent)
}

func TestDeltasSingleSample(t *testing.T) {
	t.Parallel()

	d := Deltas(track.Track{{Elevation: ele(1200)}})
	assert.Equal(t, []*float64{nil}, d)

	ascent, descent := Aggregate(d)
	assert.Zero(t, ascent)
	assert.Zero(t, descent)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		deltas  []*float64
		ascent  float64
		descent float64
	}{
		{"empty", nil, 0, 0},
		{"only climbs", []*float64{ele(10), ele(5), nil}, 15, 0},
		{"only drops", []*float64{ele(-10), ele(-2.5), nil}, 0, 12.5},
		{"zero deltas count for neither", []*float64{ele(0), ele(0), nil}, 0, 0},
		{"descent then ascent is additive", []*float64{ele(-300), ele(300), nil}, 300, 300},
		{"unknowns skipped", []*float64{nil, ele(7), nil, ele(-3), nil}, 7, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ascent, descent := Aggregate(tt.deltas)
			assert.InDelta(t, tt.ascent, ascent, 1e-9)
			assert.InDelta(t, tt.descent, descent, 1e-9)
			assert.GreaterOrEqual(t, ascent, 0.0)
			assert.GreaterOrEqual(t, descent, 0.0)
		})
	}
}

func TestAggregateNetChange(t *testing.T) {
	t.Parallel()

	values := []float64{1012.4, 1020.1, 1019.7, 1033.0, 998.6, 1001.2, 1050.9}
	tr := make(track.Track, len(values))
	for i, v := range values {
		tr[i] = track.Sample{Elevation: ele(v)}
	}

	ascent, descent := Aggregate(Deltas(tr))
	net := values[len(values)-1] - values[0]
	assert.InDelta(t, net, ascent-descent, 1e-9)
}

func TestAggregateDoesNotRoundIntermediates(t *testing.T) {
	t.Parallel()

	// 10 climbs of 0.4 m: rounding each step would report 0
	deltas := make([]*float64, 0, 11)
	for range 10 {
		deltas = append(deltas, ele(0.4))
	}
	deltas = append(deltas, nil)

	ascent, _ := Aggregate(deltas)
	assert.Equal(t, 4.0, Round(ascent))
}

func TestRound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50.0, Round(49.5))
	assert.Equal(t, 49.0, Round(49.49))
	assert.Equal(t, 0.0, Round(0.2))
}

func TestExtremes(t *testing.T) {
	t.Parallel()

	lo, hi := Extremes(track.Track{{Elevation: ele(1500)}, {}, {Elevation: ele(980)}, {Elevation: ele(2210)}})
	require.NotNil(t, lo)
	require.NotNil(t, hi)
	assert.Equal(t, 980.0, *lo)
	assert.Equal(t, 2210.0, *hi)

	lo, hi = Extremes(track.Track{{}, {}})
	assert.Nil(t, lo)
	assert.Nil(t, hi)
}
