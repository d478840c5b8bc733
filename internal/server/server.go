// Package server is the browser-facing surface: live frame preview, diagnostics stream and
// a websocket control channel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/diagnostics"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

// Controller is what the control channel drives. app.Core implements it.
type Controller interface {
	SetBrightness(b int)
	Brightness() int
	SetFrameInterval(d time.Duration)
	FrameInterval() time.Duration
	LatestFrame() frame.Frame
	Stats() output.Stats

	Effects() []string
	ActiveEffect() string
	StartEffect(name string) error
	ActiveSettings() []settings.Setting
	AssignSetting(id string, raw any) error

	// Device returns the active device id and state; ok is false without a device.
	Device() (id string, state output.State, ok bool)
}

type Server struct {
	ctl   Controller
	hub   *Hub
	diag  *diagnostics.Bus
	start time.Time
	log   zerolog.Logger
}

// New returns a server. hub and bus may be nil, which disables /ws and /diag respectively.
func New(ctl Controller, hub *Hub, bus *diagnostics.Bus) *Server {
	return &Server{ctl: ctl, hub: hub, diag: bus, start: time.Now(), log: log.With().Str("component", "server").Logger()}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Get("/health", s.handleHealth)
	if s.hub != nil {
		r.Get("/ws", s.hub.Serve)
	}
	if s.diag != nil {
		r.Get("/diag", s.handleDiag)
	}
	r.Get("/control", s.handleControl)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("listening")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if s.hub != nil {
		s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Mirror broadcasts the controller's latest frame to preview viewers every interval until ctx ends.
// It shows what effects publish even when the active device is real hardware.
func (s *Server) Mirror(ctx context.Context, every time.Duration) {
	if s.hub == nil {
		return
	}
	t := time.NewTicker(max(every, 10*time.Millisecond))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if s.hub.ClientCount() == 0 {
			continue
		}
		if f := s.ctl.LatestFrame(); f != nil {
			s.hub.BroadcastFrame("latest", f)
		}
	}
}

// Status is the snapshot returned by /health and after every control message.
type Status struct {
	UptimeS    float64           `json:"uptime_s"`
	Running    bool              `json:"running"`
	Sent       uint64            `json:"frames_sent"`
	Failed     uint64            `json:"frames_failed"`
	Brightness int               `json:"brightness"`
	IntervalMs int64             `json:"interval_ms"`
	Device     string            `json:"device,omitempty"`
	State      string            `json:"state,omitempty"`
	Effect     string            `json:"effect,omitempty"`
	Effects    []string          `json:"effects,omitempty"`
	Settings   []settings.Record `json:"settings,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func (s *Server) status() Status {
	st := s.ctl.Stats()
	out := Status{
		UptimeS:    time.Since(s.start).Seconds(),
		Running:    st.Running,
		Sent:       st.Sent,
		Failed:     st.Failed,
		Brightness: s.ctl.Brightness(),
		IntervalMs: s.ctl.FrameInterval().Milliseconds(),
		Effect:     s.ctl.ActiveEffect(),
	}
	if id, state, ok := s.ctl.Device(); ok {
		out.Device, out.State = id, state.String()
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleDiag(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ch, cancel := s.diag.Subscribe()
	send := make(chan []byte, sendBuffer)
	go writePump(conn, send)
	go func() {
		defer close(send)
		for _, d := range s.diag.Recent() {
			b, _ := json.Marshal(d)
			send <- b
		}
		for d := range ch {
			b, _ := json.Marshal(d)
			select {
			case send <- b:
			default:
			}
		}
	}()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ControlMessage is one command on the control channel. Absent fields are ignored.
type ControlMessage struct {
	Brightness *int     `json:"brightness,omitempty"`
	IntervalMs *int     `json:"interval_ms,omitempty"`
	Effect     string   `json:"effect,omitempty"`
	Setting    *Setting `json:"setting,omitempty"`
	// Query "effects" adds the effect list to the reply, "settings" the active effect's settings.
	Query string `json:"query,omitempty"`
}

type Setting struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMessage
		var reply Status
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = s.status()
			reply.Error = "invalid message: " + err.Error()
		} else {
			reply = s.Apply(msg)
		}
		b, _ := json.Marshal(reply)
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Apply runs one control message and returns the resulting status. The MQTT command topic
// feeds it too.
func (s *Server) Apply(msg ControlMessage) Status {
	var errs []error
	if msg.Brightness != nil {
		s.ctl.SetBrightness(*msg.Brightness)
	}
	if msg.IntervalMs != nil {
		s.ctl.SetFrameInterval(time.Duration(*msg.IntervalMs) * time.Millisecond)
	}
	if msg.Effect != "" {
		errs = append(errs, s.ctl.StartEffect(msg.Effect))
	}
	if msg.Setting != nil {
		errs = append(errs, s.ctl.AssignSetting(msg.Setting.ID, msg.Setting.Value))
	}

	st := s.status()
	switch msg.Query {
	case "effects":
		st.Effects = s.ctl.Effects()
	case "settings":
		for _, set := range s.ctl.ActiveSettings() {
			if rec, err := settings.ToRecord(set); err == nil {
				st.Settings = append(st.Settings, rec)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		st.Error = err.Error()
		s.log.Warn().Err(err).Msg("control message")
	}
	return st
}
