package luamod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout limits a script run or a handler call.
const DefaultTimeout = 5 * time.Second

// Errors of Lua states.
var (
	ErrStateClosed = errors.New("lua state is closed")
	ErrTimeout     = errors.New("lua execution timeout")
)

// State is a sandboxed Lua state. gopher-lua states are not goroutine
// safe; State serializes all access.
type State struct {
	mu sync.Mutex

	L       *lua.LState
	timeout time.Duration
	logger  *slog.Logger
	closed  bool
}

// newState creates a state with the safe standard libraries only.
func newState(timeout time.Duration, logger *slog.Logger) *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	s := &State{L: L, timeout: timeout, logger: logger}
	s.installSandbox()
	return s
}

// openSafeLibraries opens the libraries without file system or process
// access. io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func (s *State) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
}

// print writes to the module log.
func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.logger.Info(strings.Join(parts, "\t"), "source", "lua")
	return 0
}

// DoFile runs a script file.
func (s *State) DoFile(path string) error {
	return s.run(func() error { return s.L.DoFile(path) })
}

// DoString runs a script.
func (s *State) DoString(code string) error {
	return s.run(func() error { return s.L.DoString(code) })
}

// CallFunction calls a Lua function and returns its results.
func (s *State) CallFunction(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	var results []lua.LValue
	err := s.run(func() error {
		top := s.L.GetTop()
		s.L.Push(fn)
		for _, arg := range args {
			s.L.Push(arg)
		}
		if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
			return err
		}

		n := s.L.GetTop() - top
		results = make([]lua.LValue, n)
		for i := 0; i < n; i++ {
			results[i] = s.L.Get(top + i + 1)
		}
		s.L.Pop(n)
		return nil
	})
	return results, err
}

// CallTable calls a Lua function with a table built from fields.
func (s *State) CallTable(fn *lua.LFunction, fields map[string]lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	closed := s.closed
	var t *lua.LTable
	if !closed {
		t = s.L.NewTable()
		for k, v := range fields {
			t.RawSetString(k, v)
		}
	}
	s.mu.Unlock()

	if closed {
		return nil, ErrStateClosed
	}
	return s.CallFunction(fn, t)
}

// run executes fn with the timeout and panic recovery.
func (s *State) run(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrTimeout, err)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the state.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
