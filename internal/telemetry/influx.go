// Package telemetry records output loop metrics to InfluxDB.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	measurement           = "output"
)

// PointWriter is the part of the influx write API the recorder needs.
type PointWriter interface {
	WritePoint(p *write.Point)
}

type counters struct {
	sent   uint64
	failed uint64
	took   time.Duration
}

// Recorder aggregates scheduler events per device and writes one point per device per flush.
// It implements output.Recorder.
type Recorder struct {
	mu  sync.Mutex
	agg map[string]*counters
	w   PointWriter
	now func() time.Time
}

func NewRecorder(w PointWriter) *Recorder {
	return &Recorder{agg: map[string]*counters{}, w: w, now: time.Now}
}

func (r *Recorder) entry(id string) *counters {
	c, ok := r.agg[id]
	if !ok {
		c = &counters{}
		r.agg[id] = c
	}
	return c
}

func (r *Recorder) FrameSent(deviceID string, took time.Duration) {
	r.mu.Lock()
	c := r.entry(deviceID)
	c.sent++
	c.took += took
	r.mu.Unlock()
}

func (r *Recorder) FrameFailed(deviceID string, _ error) {
	r.mu.Lock()
	r.entry(deviceID).failed++
	r.mu.Unlock()
}

// Flush writes the counts gathered since the previous flush and resets them.
func (r *Recorder) Flush() {
	r.mu.Lock()
	agg := r.agg
	r.agg = map[string]*counters{}
	r.mu.Unlock()

	now := r.now()
	for id, c := range agg {
		fields := map[string]interface{}{
			"frames_sent":   c.sent,
			"frames_failed": c.failed,
		}
		if c.sent > 0 {
			fields["avg_frame_us"] = float64(c.took.Microseconds()) / float64(c.sent)
		}
		r.w.WritePoint(write.NewPoint(measurement, map[string]string{"device_id": id}, fields, now))
	}
}

// Run flushes every interval until ctx is cancelled, then flushes once more.
func (r *Recorder) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Flush()
			return
		case <-t.C:
			r.Flush()
		}
	}
}

// Influx owns the client connection behind a Recorder.
type Influx struct {
	*Recorder
	client   influxdb2.Client
	writeAPI api.WriteAPI
	log      zerolog.Logger
}

// Connect pings the server and returns a recorder writing to cfg's bucket.
func Connect(cfg config.Influx) (*Influx, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	opts := influxdb2.DefaultOptions()
	if cfg.BatchSize > 0 {
		opts.SetBatchSize(cfg.BatchSize)
	}
	if cfg.FlushIntervalMs > 0 {
		opts.SetFlushInterval(cfg.FlushIntervalMs)
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()
	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	i := &Influx{
		Recorder: NewRecorder(writeAPI),
		client:   client,
		writeAPI: writeAPI,
		log:      log.With().Str("component", "telemetry").Logger(),
	}
	go func() {
		for err := range writeAPI.Errors() {
			i.log.Warn().Err(err).Msg("influx write")
		}
	}()
	return i, nil
}

func (i *Influx) Close() error {
	i.Flush()
	i.writeAPI.Flush()
	i.client.Close()
	return nil
}
