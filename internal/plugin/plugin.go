// Package plugin implements the Plugin Sandbox (spec §4.F): an embedded Lua
// VM, one per plugin, exposing a deliberately restricted host API instead of
// the stock Lua stdlib, and dispatching the vfox-style hook functions a
// plugin script defines on its global PLUGIN table.
//
// Grounded on original_source/crates/vfox: its Rust host runs plugin scripts
// under Luau (which has no io and a stripped os by design) and injects back
// only the handful of functions plugins actually need
// (lua_mod/compat.rs's mod_compat, lua_mod/env.rs, lua_mod/cmd.rs, etc.).
// gopher-lua's default OpenLibs pulls in the full Lua 5.1 os/io tables, so
// this package does the equivalent restriction itself: only base, table,
// string and math are opened, and a hand-built "os" table provides only
// getenv (os.execute, os.remove and os.rename are not available).
package plugin

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox is one plugin's Lua VM: a loaded script plus its PLUGIN table.
type Sandbox struct {
	Name string
	L    *lua.LState
}

// Load reads source as a vfox-style plugin script into a fresh, restricted
// VM and returns the Sandbox ready for hook dispatch. The plugin's own name
// is recorded in the __plugin_name global so the log module can prefix messages
// with it, matching lua_mod/log.rs's get_plugin_name/format_msg.
func Load(name, source string) (*Sandbox, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, openLib := range []lua.LGFunction{
		lua.OpenBase,
		lua.OpenTable,
		lua.OpenString,
		lua.OpenMath,
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(openLib), NRet: 0, Protect: true}); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua stdlib for plugin %s: %w", name, err)
		}
	}

	L.SetGlobal("__plugin_name", lua.LString(name))
	registerHostModules(L)

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("load plugin %s: %w", name, err)
	}

	if _, ok := L.GetGlobal("PLUGIN").(*lua.LTable); !ok {
		L.Close()
		return nil, fmt.Errorf("plugin %s does not define a PLUGIN table", name)
	}

	return &Sandbox{Name: name, L: L}, nil
}

// Close releases the underlying Lua VM.
func (s *Sandbox) Close() {
	s.L.Close()
}

// pluginName reads back the __plugin_name global Load set, for the log module.
func pluginName(L *lua.LState) string {
	if v, ok := L.GetGlobal("__plugin_name").(lua.LString); ok {
		return string(v)
	}
	return ""
}

// registerHostModules installs every host module a plugin script can
// require(): env, cmd, file, json, log, semver, strings, archiver, plus the
// restricted os compat table. Mirrors lua_mod/mod.rs's registration list.
func registerHostModules(L *lua.LState) {
	L.PreloadModule("env", envLoader)
	L.PreloadModule("cmd", cmdLoader)
	L.PreloadModule("file", fileLoader)
	L.PreloadModule("json", jsonLoader)
	L.PreloadModule("log", logLoader)
	L.PreloadModule("semver", semverLoader)
	L.PreloadModule("strings", stringsLoader)
	L.PreloadModule("archiver", archiverLoader)
	installCompatOS(L)
}

// installCompatOS adds a minimal "os" global exposing only getenv; there is
// no os.setenv, os.exit, os.execute, os.remove or os.rename (cmd.exec
// covers shelling out under host control).
func installCompatOS(L *lua.LState) {
	osTable := L.NewTable()
	osTable.RawSetString("getenv", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		val, ok := os.LookupEnv(key)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(val))
		return 1
	}))
	L.SetGlobal("os", osTable)
}
