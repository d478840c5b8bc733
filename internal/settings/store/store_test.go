package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

func populate(r *settings.Registry) {
	r.Register(settings.Setting{ID: "out.brightness", Name: "Brightness", Value: settings.Int{V: 80, Min: 0, Max: 100, Step: 1}})
	r.Register(settings.Setting{ID: "fade.speed", Category: settings.Internal, Value: settings.Float{V: 1.5, Min: 0.1, Max: 4, Step: 0.1}})
	r.Register(settings.Setting{ID: "fade.random", Category: settings.Internal, Value: settings.Bool{V: true}})
	r.Register(settings.Setting{ID: "rainbow.mode", Category: settings.MusicEffect,
		Value: settings.Selection{Selected: "centre", Options: []string{"centre", "left"}}})
	r.Register(settings.Setting{ID: "fade.color", Category: settings.Internal, Value: settings.Color{V: frame.Color{R: 10, G: 20, B: 30}}})
	r.Register(settings.Setting{ID: "meta", Category: settings.Other, Value: settings.Object{V: []any{"a", "b"}}})
}

func roundTrip(t *testing.T, st settings.Store) {
	t.Helper()
	r := settings.New(st)
	populate(r)
	want := r.All()
	require.NoError(t, r.Save("main"))

	back := settings.New(st)
	assert.Equal(t, len(want), back.Load("main"))
	assert.Equal(t, want, back.All())

	// Unknown keys load as empty.
	assert.Equal(t, 0, back.Load("other"))
}

func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestFileRoundTrip(t *testing.T) {
	st, err := NewFile(t.TempDir())
	require.NoError(t, err)
	roundTrip(t, st)
}

func TestFileCorruptLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.yaml"), []byte("settings: [::"), 0o644))

	r := settings.New(st)
	r.Register(settings.Setting{ID: "x", Value: settings.Bool{}})
	assert.Equal(t, 0, r.Load("main"))
	assert.Equal(t, 0, r.Len())
}

func TestSQLiteRoundTrip(t *testing.T) {
	st, err := OpenSQLite(":memory:", 0)
	require.NoError(t, err)
	defer st.Close()
	roundTrip(t, st)

	// A second save replaces the first snapshot.
	r := settings.New(st)
	r.Register(settings.Setting{ID: "only", Value: settings.Bool{V: true}})
	require.NoError(t, r.Save("main"))
	assert.Equal(t, 1, settings.New(st).Load("main"))
}

func TestSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	st, err := OpenSQLite(path, 0)
	require.NoError(t, err)
	roundTrip(t, st)
	require.NoError(t, st.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
