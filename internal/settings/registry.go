// Package settings is the typed, hot-reloadable configuration registry shared by the
// output scheduler, effects and configuration surfaces.
package settings

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

// Store persists a full settings collection under a key.
type Store interface {
	Store(key string, records []Record) error
	// Retrieve returns ErrNoData (possibly wrapped) when nothing is stored under key.
	Retrieve(key string) ([]Record, error)
}

// Registry owns the setting collection. Every lookup and mutation is serialized by one mutex,
// so effects may read on each tick while a surface edits values concurrently.
type Registry struct {
	mu    sync.Mutex
	items map[string]*Setting
	order []string
	store Store
	log   zerolog.Logger

	listeners []func(Setting)
}

func New(store Store) *Registry {
	return &Registry{
		items: map[string]*Setting{},
		store: store,
		log:   log.With().Str("component", "settings").Logger(),
	}
}

// OnChange registers fn to be called after SetValue changes a setting. fn runs outside the registry lock.
func (r *Registry) OnChange(fn func(Setting)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Register inserts s if its id is absent. When a setting of the same kind exists its metadata,
// bounds and options are refreshed and the stored value kept; a different kind is replaced by s.
// The returned setting is the one now held by the registry.
func (r *Registry) Register(s Setting) Setting { return r.register(s, true) }

// RegisterWithoutMerge is Register without the metadata refresh for same-kind settings.
func (r *Registry) RegisterWithoutMerge(s Setting) Setting { return r.register(s, false) }

func (r *Registry) register(s Setting, merge bool) Setting {
	if s.Category == "" {
		s.Category = General
	}
	if o, ok := s.Value.(Object); ok {
		n, err := normalizeObject(o)
		if err != nil {
			r.log.Warn().Err(err).Str("id", s.ID).Msg("object setting will not persist")
		}
		s.Value = n
	}
	s = s.clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[s.ID]
	switch {
	case !ok:
		r.items[s.ID] = &s
		r.order = append(r.order, s.ID)
		return s.clone()
	case cur.Kind() != s.Kind():
		r.log.Debug().Str("id", s.ID).Str("from", string(cur.Kind())).Str("to", string(s.Kind())).
			Msg("setting kind changed, replacing")
		*cur = s
		return s.clone()
	case merge:
		mergeInto(cur, s)
	}
	return cur.clone()
}

func mergeInto(cur *Setting, in Setting) {
	cur.Name = in.Name
	cur.Category = in.Category
	cur.Description = in.Description

	switch v := cur.Value.(type) {
	case Int:
		n := in.Value.(Int)
		v.Min, v.Max, v.Step = n.Min, n.Max, n.Step
		cur.Value = v
	case Float:
		n := in.Value.(Float)
		v.Min, v.Max, v.Step = n.Min, n.Max, n.Step
		cur.Value = v
	case Selection:
		n := in.Value.(Selection)
		if slices.Equal(v.Options, n.Options) {
			return
		}
		v.Options = n.Options
		if !v.Admissible(v.Selected) {
			switch {
			case n.Admissible(n.Selected):
				v.Selected = n.Selected
			case len(n.Options) > 0:
				v.Selected = n.Options[0]
			default:
				v.Selected = ""
			}
		}
		cur.Value = v
	}
}

func (r *Registry) Get(id string) (Setting, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return Setting{}, false
	}
	return s.clone(), true
}

// GetKind returns the setting only when it exists with the given kind.
func (r *Registry) GetKind(kind Kind, id string) (Setting, bool) {
	s, ok := r.Get(id)
	if !ok || s.Kind() != kind {
		return Setting{}, false
	}
	return s, true
}

// Lookup returns the typed value of a setting, false when absent or of another kind.
func Lookup[T Value](r *Registry, id string) (T, bool) {
	var zero T
	s, ok := r.Get(id)
	if !ok {
		return zero, false
	}
	v, ok := s.Value.(T)
	return v, ok
}

// Bool returns the value of a bool setting, false when absent.
func (r *Registry) Bool(id string) bool {
	v, _ := Lookup[Bool](r, id)
	return v.V
}

func (r *Registry) Int(id string) int {
	v, _ := Lookup[Int](r, id)
	return v.V
}

func (r *Registry) Float(id string) float64 {
	v, _ := Lookup[Float](r, id)
	return v.V
}

// Selected returns the current choice of a selection setting.
func (r *Registry) Selected(id string) string {
	v, _ := Lookup[Selection](r, id)
	return v.Selected
}

func (r *Registry) Color(id string) frame.Color {
	v, _ := Lookup[Color](r, id)
	return v.V
}

// ByCategory returns the settings in any of the given categories, in insertion order.
func (r *Registry) ByCategory(cats ...Category) []Setting {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Setting
	for _, id := range r.order {
		s := r.items[id]
		if slices.Contains(cats, s.Category) {
			out = append(out, s.clone())
		}
	}
	return out
}

// All returns every setting in insertion order.
func (r *Registry) All() []Setting {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Setting, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].clone())
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// SetValue replaces the value of an existing setting. v must have the setting's kind.
// Numeric values are clamped to the stored bounds and selections must name an existing option.
func (r *Registry) SetValue(id string, v Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil value for %q", ErrInvalidValue, id)
	}
	if o, ok := v.(Object); ok {
		n, err := normalizeObject(o)
		if err != nil {
			return fmt.Errorf("set %q: %w", id, err)
		}
		v = n
	}
	r.mu.Lock()
	cur, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if cur.Kind() != v.Kind() {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q is %s, got %s", ErrKindMismatch, id, cur.Kind(), v.Kind())
	}

	switch c := cur.Value.(type) {
	case Int:
		c.V = c.clamp(v.(Int).V)
		cur.Value = c
	case Float:
		c.V = c.clamp(v.(Float).V)
		cur.Value = c
	case Selection:
		sel := v.(Selection).Selected
		if !c.Admissible(sel) {
			r.mu.Unlock()
			return fmt.Errorf("%w: %q is not an option of %q", ErrInvalidValue, sel, id)
		}
		c.Selected = sel
		cur.Value = c
	default:
		cur.Value = v.clone()
	}
	changed := cur.clone()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(changed)
	}
	return nil
}

// Remove deletes a setting and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(x string) bool { return x == id })
	return true
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = map[string]*Setting{}
	r.order = nil
}

// Save writes the whole collection to the store under key.
func (r *Registry) Save(key string) error {
	if r.store == nil {
		return ErrNoStore
	}
	all := r.All()
	records := make([]Record, 0, len(all))
	for _, s := range all {
		rec, err := ToRecord(s)
		if err != nil {
			return fmt.Errorf("save %q: %w", key, err)
		}
		records = append(records, rec)
	}
	if err := r.store.Store(key, records); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	r.log.Debug().Str("key", key).Int("count", len(records)).Msg("settings saved")
	return nil
}

// Load replaces the collection with what the store holds under key and returns the number of
// settings loaded. The swap happens under one lock, so readers see the old collection or the new
// one and never an empty registry in between. Absent or invalid data leaves the registry empty;
// it is logged, never returned.
func (r *Registry) Load(key string) int {
	items, order, err := r.retrieve(key)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("settings unavailable, starting empty")
	}

	r.mu.Lock()
	r.items, r.order = items, order
	r.mu.Unlock()
	if err == nil {
		r.log.Info().Str("key", key).Int("count", len(order)).Msg("settings loaded")
	}
	return len(order)
}

// retrieve decodes the stored collection without touching the registry. On error it returns
// an empty collection.
func (r *Registry) retrieve(key string) (map[string]*Setting, []string, error) {
	items := map[string]*Setting{}
	if r.store == nil {
		return items, nil, ErrNoStore
	}
	records, err := r.store.Retrieve(key)
	if err != nil {
		return items, nil, err
	}
	var order []string
	for _, rec := range records {
		s, err := fromRecord(rec)
		if err != nil {
			return map[string]*Setting{}, nil, fmt.Errorf("stored settings invalid: %w", err)
		}
		if _, dup := items[s.ID]; !dup {
			order = append(order, s.ID)
		}
		items[s.ID] = &s
	}
	return items, order, nil
}
