package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names a Lua global the host calls at a fixed point of the world lifecycle.
type Hook string

const (
	HookWorldLoad   Hook = "on_world_load"
	HookWorldUnload Hook = "on_world_unload"
	HookWorldLeak   Hook = "on_world_leak"
)

// Engine wraps a single gopher-lua VM running the operator's hook scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir/hooks.
// A missing directory yields an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log.Named("lua")}
	vm.SetGlobal("log_info", vm.NewFunction(e.luaLogInfo))
	vm.SetGlobal("log_warn", vm.NewFunction(e.luaLogWarn))

	if err := e.loadDir(filepath.Join(scriptsDir, "hooks")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load hook scripts: %w", err)
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

// Has reports whether the scripts define the hook.
func (e *Engine) Has(h Hook) bool {
	return e.vm.GetGlobal(string(h)) != lua.LNil
}

// OnWorldLoad asks the scripts whether a world may be loaded. Only an explicit
// false vetoes; a missing hook or a script error allows the load.
func (e *Engine) OnWorldLoad(id int32, name string) bool {
	ret, ok := e.call(HookWorldLoad, e.worldTable(id, name))
	if !ok {
		return true
	}
	return ret != lua.LFalse
}

// OnWorldUnload tells the scripts a world is gone.
func (e *Engine) OnWorldUnload(id int32, name string) {
	e.call(HookWorldUnload, e.worldTable(id, name))
}

// OnWorldLeak forwards a leak warning to the scripts.
func (e *Engine) OnWorldLeak(token string, name string, count int) {
	t := e.vm.NewTable()
	t.RawSetString("token", lua.LString(token))
	t.RawSetString("name", lua.LString(name))
	t.RawSetString("count", lua.LNumber(count))
	e.call(HookWorldLeak, t)
}

func (e *Engine) worldTable(id int32, name string) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(id))
	t.RawSetString("name", lua.LString(name))
	return t
}

// call invokes hook with one argument and returns its first result. ok is
// false when the hook is undefined or failed; failures are logged only.
func (e *Engine) call(h Hook, arg lua.LValue) (lua.LValue, bool) {
	fn := e.vm.GetGlobal(string(h))
	if fn == lua.LNil {
		return lua.LNil, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua hook error", zap.String("hook", string(h)), zap.Error(err))
		return lua.LNil, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, true
}

func (e *Engine) luaLogInfo(L *lua.LState) int {
	e.log.Info(L.CheckString(1))
	return 0
}

func (e *Engine) luaLogWarn(L *lua.LState) int {
	e.log.Warn(L.CheckString(1))
	return 0
}

func (e *Engine) Close() {
	e.vm.Close()
}
