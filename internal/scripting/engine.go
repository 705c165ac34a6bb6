package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/saraasara/wakes/internal/wake"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running wake producer scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	missingWarned bool
}

// NewEngine creates a Lua engine and loads every script under
// scriptsDir/core and scriptsDir/producers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "producers"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

// SetWorld exposes the loaded world's bounds to scripts as WORLD_NAME,
// WORLD_MIN_Y and WORLD_MAX_Y.
func (e *Engine) SetWorld(w wake.WorldBounds) {
	e.vm.SetGlobal("WORLD_NAME", lua.LString(w.Name))
	e.vm.SetGlobal("WORLD_MIN_Y", lua.LNumber(w.MinY))
	e.vm.SetGlobal("WORLD_MAX_Y", lua.LNumber(w.MaxY))
}

// EmitContext is the per-tick input of emit_wakes.
type EmitContext struct {
	Tick       uint64
	Resolution int
	LiveNodes  int
}

// EmitWakes calls the Lua emit_wakes(ctx) function and returns the
// positions of the wakes it spawns this tick. The function returns an
// array of {x=, y=, z=} tables; rows that are not tables are skipped.
func (e *Engine) EmitWakes(ctx EmitContext) []wake.Vec3 {
	fn := e.vm.GetGlobal("emit_wakes")
	if fn == lua.LNil {
		if !e.missingWarned {
			e.log.Warn("lua function emit_wakes not found, no wakes will spawn")
			e.missingWarned = true
		}
		return nil
	}

	t := e.vm.NewTable()
	t.RawSetString("tick", lua.LNumber(ctx.Tick))
	t.RawSetString("resolution", lua.LNumber(ctx.Resolution))
	t.RawSetString("live_nodes", lua.LNumber(ctx.LiveNodes))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua emit_wakes error", zap.Error(err), zap.Uint64("tick", ctx.Tick))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	out := make([]wake.Vec3, 0, rt.Len())
	rt.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		out = append(out, wake.Vec3{
			X: lNum(row, "x"),
			Y: lNum(row, "y"),
			Z: lNum(row, "z"),
		})
	})
	return out
}

// lNum reads a number field from a Lua table.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
