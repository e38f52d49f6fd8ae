package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/hexedgo/server/internal/data"
)

// ErrGeneratorNotFound is returned for a layout generator no script registered.
var ErrGeneratorNotFound = errors.New("generator not found")

// Engine wraps a single gopher-lua VM hosting the map layout generators.
// Scripts call register_generator(name, fn) at load time; fn(seed) returns
// a layout table. Single-goroutine access only (game loop).
type Engine struct {
	vm         *lua.LState
	log        *zap.Logger
	generators map[string]*lua.LFunction
}

// NewEngine creates a Lua engine and loads every script under
// scriptsDir/generators. A missing directory loads nothing.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, generators: make(map[string]*lua.LFunction)}
	vm.SetGlobal("register_generator", vm.NewFunction(e.registerGenerator))

	if err := e.loadDir(filepath.Join(scriptsDir, "generators")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load generator scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) registerGenerator(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if _, dup := e.generators[name]; dup {
		e.log.Warn("generator redefined", zap.String("name", name))
	}
	e.generators[name] = fn
	return 0
}

// Names returns the registered generator names in sorted order.
func (e *Engine) Names() []string {
	out := make([]string, 0, len(e.generators))
	for n := range e.generators {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Generate runs the named generator with seed and converts its result.
func (e *Engine) Generate(name string, seed int64) (*data.Layout, error) {
	fn, ok := e.generators[name]
	if !ok {
		return nil, fmt.Errorf("generate %s: %w", name, ErrGeneratorNotFound)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(seed)); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	t, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("generate %s: returned %s, want table", name, result.Type())
	}
	layout := &data.Layout{
		Name:   lStr(t, "name"),
		Width:  int32(lInt(t, "width")),
		Height: int32(lInt(t, "height")),
	}
	if layout.Name == "" {
		layout.Name = name
	}
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("generate %s: map size %dx%d", name, layout.Width, layout.Height)
	}
	eachRow(t, "zones", func(z *lua.LTable) {
		layout.Entries = append(layout.Entries, data.ZoneEntry{
			ID:       lInt(z, "id"),
			X:        int32(lInt(z, "x")),
			Y:        int32(lInt(z, "y")),
			Shape:    lStr(z, "shape"),
			Diameter: int32(lInt(z, "diameter")),
			Width:    int32(lInt(z, "width")),
			Height:   int32(lInt(z, "height")),
		})
	})
	eachRow(t, "walls", func(w *lua.LTable) {
		layout.Walls = append(layout.Walls, data.WallEntry{
			X:     int32(lInt(w, "x")),
			Y:     int32(lInt(w, "y")),
			Block: lStr(w, "block"),
		})
	})
	e.log.Info("layout generated",
		zap.String("generator", name),
		zap.Int64("seed", seed),
		zap.Int("zones", len(layout.Entries)),
		zap.Int("walls", len(layout.Walls)),
	)
	return layout, nil
}

// eachRow visits the table rows of an array field, skipping non-tables.
func eachRow(t *lua.LTable, key string, fn func(*lua.LTable)) {
	arr, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return
	}
	for i := 1; i <= arr.Len(); i++ {
		if row, ok := arr.RawGetInt(i).(*lua.LTable); ok {
			fn(row)
		}
	}
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
