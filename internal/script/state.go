package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/urilens/internal/encode"
	"github.com/dshills/urilens/internal/logging"
)

// DefaultTimeout bounds one script execution.
const DefaultTimeout = 30 * time.Second

// ModuleName is the name scripts require.
const ModuleName = "urilens"

// Option configures a State.
type Option func(*State)

// WithTimeout sets the execution timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *State) { s.timeout = d }
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(s *State) { s.out = w }
}

// WithEncoder sets the encoder behind urilens.encode.
func WithEncoder(e *encode.Encoder) Option {
	return func(s *State) { s.encoder = e }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) { s.log = l }
}

// State is a sandboxed Lua state with the urilens module loaded.
//
// gopher-lua states are not goroutine-safe; State serializes executions
// with a mutex.
type State struct {
	mu sync.Mutex
	L  *lua.LState

	timeout time.Duration
	out     io.Writer
	encoder *encode.Encoder
	log     *logging.Logger
	closed  bool
}

// NewState creates a State.
func NewState(opts ...Option) *State {
	s := &State{
		timeout: DefaultTimeout,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.encoder == nil {
		s.encoder = encode.NewEncoder()
	}
	s.log = logging.OrDefault(s.log).WithComponent("script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	s.openLibraries()
	s.sandbox()

	mod := newModule(s.encoder)
	s.L.PreloadModule(ModuleName, mod.loader)
	s.L.SetGlobal(ModuleName, mod.table(s.L))
	return s
}

func (s *State) openLibraries() {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		s.L.Push(s.L.NewFunction(lib.fn))
		s.L.Push(lua.LString(lib.name))
		s.L.Call(1, 0)
	}
}

// sandbox removes file loading and points print at the configured output.
func (s *State) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// DoString runs code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, "<string>", func() error { return s.L.DoString(code) })
}

// DoFile runs the script at path. The file is read by the host, so the
// sandbox's missing loadfile does not apply.
func (s *State) DoFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.run(ctx, path, func() error {
		fn, err := s.L.Load(strings.NewReader(string(src)), path)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

func (s *State) run(ctx context.Context, name string, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	s.log.Debug("running %s", name)
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// SetArgs exposes args to scripts as the global array arg.
func (s *State) SetArgs(args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	t := s.L.NewTable()
	for i, a := range args {
		t.RawSetInt(i+1, lua.LString(a))
	}
	s.L.SetGlobal("arg", t)
}

// Global returns a global as a Go value: strings, numbers, booleans and
// nil convert; anything else is returned as its Lua string form.
func (s *State) Global(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return toGo(s.L.GetGlobal(name))
}

func toGo(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case lua.LBool:
		return bool(v)
	case *lua.LNilType:
		return nil
	default:
		return v.String()
	}
}

// Close releases the Lua state.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
