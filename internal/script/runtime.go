package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// DefaultMethod is the global function called to create the script object.
const DefaultMethod = "Controller"

// Runtime owns one Lua state and the object its creation function
// returned. Calls are serialized; a Lua state is single threaded.
type Runtime struct {
	mu     sync.Mutex
	L      *lua.LState
	obj    lua.LValue
	path   string
	closed bool
}

// Load runs the file at path and calls the global function named method
// (DefaultMethod when empty) to create the script object.
func Load(path, method string) (*Runtime, error) {
	if method == "" {
		method = DefaultMethod
	}

	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, path, err)
	}

	fn := L.GetGlobal(method)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%w: %s.%s", ErrNotCallable, path, method)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s.%s: %v", ErrScript, path, method, err)
	}
	obj := L.Get(-1)
	L.Pop(1)

	return &Runtime{L: L, obj: obj, path: path}, nil
}

func (r *Runtime) Path() string { return r.path }

// Close releases the Lua state. Later calls fail with ErrClosed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.L.Close()
	return nil
}

// Has reports whether the script object defines name. An attribute that
// exists but is not a function is an error.
func (r *Runtime) Has(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.field(name)
	switch v.Type() {
	case lua.LTNil:
		return false, nil
	case lua.LTFunction:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s is a %s", ErrNotCallable, name, v.Type())
}

// Call invokes obj:name(args...) and returns its numeric result.
func (r *Runtime) Call(name string, args ...any) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret, err := r.call(name, 1, args)
	if err != nil {
		return 0, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%w: %s returned %s", ErrBadResult, name, ret.Type())
	}
	return float64(n), nil
}

// Invoke calls obj:name(args...) and discards any result.
func (r *Runtime) Invoke(name string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.call(name, 0, args)
	return err
}

func (r *Runtime) field(name string) lua.LValue {
	if r.closed {
		return lua.LNil
	}
	switch r.obj.Type() {
	case lua.LTTable, lua.LTUserData:
		return r.L.GetField(r.obj, name)
	}
	return lua.LNil
}

func (r *Runtime) call(name string, nret int, args []any) (lua.LValue, error) {
	if r.closed {
		return lua.LNil, fmt.Errorf("%w: %s", ErrClosed, r.path)
	}
	fn := r.field(name)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}

	largs := make([]lua.LValue, 0, len(args)+1)
	largs = append(largs, r.obj)
	for _, a := range args {
		largs = append(largs, toLua(r.L, a))
	}

	if err := r.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, largs...); err != nil {
		return lua.LNil, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}
	if nret == 0 {
		return lua.LNil, nil
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)
	return ret, nil
}

// toLua converts plain Go values and string-keyed maps into Lua values.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case map[string]any:
		t := L.NewTable()
		for k, val := range x {
			t.RawSetString(k, toLua(L, val))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}
