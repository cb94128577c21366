package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		method string
		want   error
	}{
		{"syntax error", "testdata/syntax.lua", "", ErrScript},
		{"missing file", "testdata/none.lua", "", ErrScript},
		{"missing method", "testdata/steer.lua", "Nope", ErrNotCallable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, tt.method)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRuntime_Has(t *testing.T) {
	rt, err := Load("testdata/broken.lua", "")
	require.NoError(t, err)
	defer rt.Close()

	ok, err := rt.Has("steerControl")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rt.Has("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = rt.Has("speedControl")
	assert.ErrorIs(t, err, ErrNotCallable)
}

func TestRuntime_Call(t *testing.T) {
	rt, err := Load("testdata/steer.lua", "")
	require.NoError(t, err)
	defer rt.Close()

	data := map[string]any{"heading": map[string]any{"error": 50.0}}
	got, err := rt.Call("steerControl", data)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got, 1e-12)

	_, err = rt.Call("steerControl", data)
	require.NoError(t, err)
	calls := rt.L.GetField(rt.obj, "calls")
	assert.Equal(t, lua.LNumber(2), calls)
}

func TestRuntime_CallBadResult(t *testing.T) {
	rt, err := Load("testdata/broken.lua", "")
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Call("steerControl", map[string]any{})
	assert.ErrorIs(t, err, ErrBadResult)
}

func TestRuntime_RuntimeErrorPropagates(t *testing.T) {
	rt, err := Load("testdata/broken.lua", "")
	require.NoError(t, err)
	defer rt.Close()

	err = rt.Invoke("report", map[string]any{})
	require.ErrorIs(t, err, ErrScript)
	assert.Contains(t, err.Error(), "listener failed")
}

func TestRuntime_Close(t *testing.T) {
	rt, err := Load("testdata/steer.lua", "")
	require.NoError(t, err)

	require.NoError(t, rt.Close())
	require.NoError(t, rt.Close())

	_, err = rt.Call("steerControl", map[string]any{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, rt.Invoke("steerControl"), ErrClosed)

	ok, err := rt.Has("steerControl")
	require.NoError(t, err)
	assert.False(t, ok)
}
