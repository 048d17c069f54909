package plugin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	lua "github.com/yuin/gopher-lua"

	"github.com/vertool/vertool/internal/extract"
)

// envLoader implements lua_mod/env.rs's mod_env: env.setenv(key, val).
func envLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("setenv", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		val := L.CheckString(2)
		os.Setenv(key, val)
		return 0
	}))
	L.Push(mod)
	return 1
}

// cmdLoader implements lua_mod/cmd.rs's mod_cmd: cmd.exec(command[, options]),
// options.cwd sets the working directory. Runs under "sh -c"/"cmd /C" per
// host OS, exactly as the original shells out.
func cmdLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("exec", L.NewFunction(cmdExec))
	L.Push(mod)
	return 1
}

func cmdExec(L *lua.LState) int {
	command := L.CheckString(1)
	var cwd string
	if L.GetTop() >= 2 {
		if opts, ok := L.Get(2).(*lua.LTable); ok {
			if v, ok := opts.RawGetString("cwd").(lua.LString); ok {
				cwd = string(v)
			}
		}
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	if cwd != "" {
		cmd.Dir = cwd
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		L.RaiseError("cmd.exec %q: %v: %s", command, err, out)
		return 0
	}
	L.Push(lua.LString(string(out)))
	return 1
}

// fileLoader implements lua_mod/file.rs's mod_file: file.join_path(...),
// file.symlink(src, dst).
func fileLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("join_path", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			if s := L.CheckString(i); s != "" {
				parts = append(parts, s)
			}
		}
		L.Push(lua.LString(filepath.Join(parts...)))
		return 1
	}))
	mod.RawSetString("symlink", L.NewFunction(func(L *lua.LState) int {
		src := L.CheckString(1)
		dst := L.CheckString(2)
		if err := os.Symlink(src, dst); err != nil {
			L.RaiseError("file.symlink(%q, %q): %v", src, dst, err)
		}
		return 0
	}))
	L.Push(mod)
	return 1
}

// jsonLoader implements lua_mod/json.rs's mod_json: json.encode(value),
// json.decode(string). There is no gopher-lua analogue of mlua's
// LuaSerdeExt, so the LValue<->JSON bridge below is hand-rolled rather than
// pulled from a library — no pack dependency offers it.
func jsonLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("encode", L.NewFunction(func(L *lua.LState) int {
		v := luaToGo(L.CheckAny(1))
		b, err := json.Marshal(v)
		if err != nil {
			L.RaiseError("json.encode: %v", err)
			return 0
		}
		L.Push(lua.LString(string(b)))
		return 1
	}))
	mod.RawSetString("decode", L.NewFunction(func(L *lua.LState) int {
		s := L.CheckString(1)
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			L.RaiseError("json.decode: %v", err)
			return 0
		}
		L.Push(goToLua(L, v))
		return 1
	}))
	L.Push(mod)
	return 1
}

func luaToGo(v lua.LValue) any {
	switch lv := v.(type) {
	case lua.LBool:
		return bool(lv)
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	case *lua.LTable:
		if lv.Len() > 0 {
			arr := make([]any, 0, lv.Len())
			lv.ForEach(func(_, val lua.LValue) {
				arr = append(arr, luaToGo(val))
			})
			return arr
		}
		obj := make(map[string]any)
		lv.ForEach(func(key, val lua.LValue) {
			obj[fmt.Sprint(key)] = luaToGo(val)
		})
		return obj
	default:
		return nil
	}
}

func goToLua(L *lua.LState, v any) lua.LValue {
	switch tv := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(tv)
	case float64:
		return lua.LNumber(tv)
	case string:
		return lua.LString(tv)
	case []any:
		t := L.NewTable()
		for _, item := range tv {
			t.Append(goToLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range tv {
			t.RawSetString(k, goToLua(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}

// logLoader implements lua_mod/log.rs's mod_log: log.trace/debug/info/
// warn/error(...), prefixed with the plugin's name like format_msg does.
func logLoader(L *lua.LState) int {
	mod := L.NewTable()
	for level, fn := range map[string]func(string, ...any){
		"trace": func(msg string, args ...any) { slog.Debug(msg, args...) },
		"debug": slog.Debug,
		"info":  slog.Info,
		"warn":  slog.Warn,
		"error": slog.Error,
	} {
		fn := fn
		mod.RawSetString(level, L.NewFunction(func(L *lua.LState) int {
			parts := make([]string, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				parts = append(parts, L.ToStringMeta(L.Get(i)).String())
			}
			msg := strings.Join(parts, "\t")
			if name := pluginName(L); name != "" {
				msg = fmt.Sprintf("[%s] %s", name, msg)
			}
			fn(msg)
			return 0
		}))
	}
	L.Push(mod)
	return 1
}

// semverLoader implements lua_mod/semver.rs's mod_semver: semver.compare,
// semver.parse, semver.sort, semver.sort_by. Uses Masterminds/semver
// (already the ecosystem's semver library in this module) rather than
// hand-rolling version comparison.
func semverLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("compare", L.NewFunction(func(L *lua.LState) int {
		v1, err1 := semver.NewVersion(L.CheckString(1))
		v2, err2 := semver.NewVersion(L.CheckString(2))
		if err1 != nil || err2 != nil {
			L.RaiseError("semver.compare: invalid version")
			return 0
		}
		L.Push(lua.LNumber(v1.Compare(v2)))
		return 1
	}))
	mod.RawSetString("parse", L.NewFunction(func(L *lua.LState) int {
		v, err := semver.NewVersion(L.CheckString(1))
		if err != nil {
			L.RaiseError("semver.parse: %v", err)
			return 0
		}
		t := L.NewTable()
		t.Append(lua.LNumber(v.Major()))
		t.Append(lua.LNumber(v.Minor()))
		t.Append(lua.LNumber(v.Patch()))
		L.Push(t)
		return 1
	}))
	mod.RawSetString("sort", L.NewFunction(func(L *lua.LState) int {
		in := L.CheckTable(1)
		versions := make([]string, 0, in.Len())
		in.ForEach(func(_, v lua.LValue) { versions = append(versions, v.String()) })
		sortVersions(versions)
		out := L.NewTable()
		for _, v := range versions {
			out.Append(lua.LString(v))
		}
		L.Push(out)
		return 1
	}))
	mod.RawSetString("sort_by", L.NewFunction(func(L *lua.LState) int {
		in := L.CheckTable(1)
		field := L.CheckString(2)
		type item struct {
			t   *lua.LTable
			ver string
		}
		items := make([]item, 0, in.Len())
		in.ForEach(func(_, v lua.LValue) {
			if t, ok := v.(*lua.LTable); ok {
				ver := ""
				if s, ok := t.RawGetString(field).(lua.LString); ok {
					ver = string(s)
				}
				items = append(items, item{t: t, ver: ver})
			}
		})
		sort.SliceStable(items, func(i, j int) bool {
			return compareVersions(items[i].ver, items[j].ver) < 0
		})
		out := L.NewTable()
		for _, it := range items {
			out.Append(it.t)
		}
		L.Push(out)
		return 1
	}))
	L.Push(mod)
	return 1
}

func sortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) < 0
	})
}

func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// stringsLoader implements lua_mod/strings.rs's mod_strings.
func stringsLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("split", L.NewFunction(func(L *lua.LState) int {
		s, sep := L.CheckString(1), L.CheckString(2)
		t := L.NewTable()
		for _, part := range strings.Split(s, sep) {
			t.Append(lua.LString(part))
		}
		L.Push(t)
		return 1
	}))
	mod.RawSetString("has_prefix", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(strings.HasPrefix(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	mod.RawSetString("has_suffix", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(strings.HasSuffix(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	mod.RawSetString("trim", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(strings.TrimSuffix(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	mod.RawSetString("trim_space", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
		return 1
	}))
	mod.RawSetString("contains", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(strings.Contains(L.CheckString(1), L.CheckString(2))))
		return 1
	}))
	mod.RawSetString("join", L.NewFunction(func(L *lua.LState) int {
		arr := L.CheckTable(1)
		sep := L.CheckString(2)
		parts := make([]string, 0, arr.Len())
		arr.ForEach(func(_, v lua.LValue) { parts = append(parts, v.String()) })
		L.Push(lua.LString(strings.Join(parts, sep)))
		return 1
	}))
	L.Push(mod)
	return 1
}

// archiverLoader implements lua_mod/archiver.rs's mod_archiver:
// archiver.decompress(archivePath, destDir), delegated to internal/extract
// instead of a Rust-side format dispatch table.
func archiverLoader(L *lua.LState) int {
	mod := L.NewTable()
	mod.RawSetString("decompress", L.NewFunction(func(L *lua.LState) int {
		archivePath := L.CheckString(1)
		dest := L.CheckString(2)

		archiveType := extract.DetectArchiveType(archivePath)
		ex, err := extract.NewExtractor(archiveType)
		if err != nil {
			L.RaiseError("archiver.decompress: %v", err)
			return 0
		}
		f, err := os.Open(archivePath)
		if err != nil {
			L.RaiseError("archiver.decompress: open %s: %v", archivePath, err)
			return 0
		}
		defer f.Close()
		if err := ex.Extract(f, dest); err != nil {
			L.RaiseError("archiver.decompress: %v", err)
			return 0
		}
		return 0
	}))
	L.Push(mod)
	return 1
}
