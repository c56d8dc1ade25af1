package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceTrackerSummaries(t *testing.T) {
	pt := NewPerformanceTracker(0)
	for i := 1; i <= 20; i++ {
		pt.Record("api", time.Duration(i)*time.Millisecond, false)
	}
	pt.Record("api", time.Hour, true)
	pt.Record("form", 3*time.Millisecond, false)

	summaries := pt.Summaries()
	require.Len(t, summaries, 2)

	api := summaries[0]
	assert.Equal(t, "api", api.Source)
	assert.Equal(t, int64(21), api.Count)
	assert.Equal(t, int64(1), api.Failed)
	assert.Equal(t, 10*time.Millisecond, api.P50)
	assert.Equal(t, 19*time.Millisecond, api.P95)
	assert.Equal(t, 20*time.Millisecond, api.Max)
	assert.Equal(t, 10500*time.Microsecond, api.Mean)

	assert.Equal(t, "form", summaries[1].Source)
	assert.Equal(t, 3*time.Millisecond, summaries[1].Max)
}

func TestPerformanceTrackerWindow(t *testing.T) {
	pt := NewPerformanceTracker(3)
	for _, ms := range []int{100, 1, 2, 3} {
		pt.Record("ws", time.Duration(ms)*time.Millisecond, false)
	}

	summary := pt.Summaries()[0]
	assert.Equal(t, int64(4), summary.Count)
	assert.Equal(t, 3*time.Millisecond, summary.Max)
	assert.Equal(t, 2*time.Millisecond, summary.Mean)
}

func TestPerformanceTrackerNil(t *testing.T) {
	var pt *PerformanceTracker
	pt.Record("api", time.Millisecond, false)
	assert.Nil(t, pt.Summaries())
}
