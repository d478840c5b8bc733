package telemetry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightstream/internal/config"
)

type fakeWriter struct {
	mu     sync.Mutex
	points []*write.Point
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}

func fieldMap(p *write.Point) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestRecorderAggregatesPerDevice(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w)
	r.FrameSent("a", 2*time.Millisecond)
	r.FrameSent("a", 4*time.Millisecond)
	r.FrameFailed("a", errors.New("x"))
	r.FrameFailed("b", errors.New("y"))
	r.Flush()

	require.Len(t, w.points, 2)
	byDevice := map[string]*write.Point{}
	for _, p := range w.points {
		assert.Equal(t, "output", p.Name())
		byDevice[p.TagList()[0].Value] = p
	}
	a := fieldMap(byDevice["a"])
	assert.EqualValues(t, 2, a["frames_sent"])
	assert.EqualValues(t, 1, a["frames_failed"])
	assert.Equal(t, 3000.0, a["avg_frame_us"])
	_, ok := fieldMap(byDevice["b"])["avg_frame_us"]
	assert.False(t, ok)

	// Counters reset after a flush.
	r.Flush()
	assert.Len(t, w.points, 2)
}

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.Influx{})
	assert.ErrorIs(t, err, ErrDisabled)
}
