package backend

import "strings"

// shorthandMap maps a bare tool name (no "backend:" prefix) to the aqua
// registry package it resolves to, mirroring original_source/src/shorthand.rs's
// SHORTHAND_MAP. The full list there is generated from the aqua registry's
// own package index; this is a hand-picked subset of the most common
// entries, since that generated table isn't part of the ported sources.
var shorthandMap = map[string]string{
	"ripgrep":    "BurntSushi/ripgrep",
	"rg":         "BurntSushi/ripgrep",
	"fd":         "sharkdp/fd",
	"bat":        "sharkdp/bat",
	"fzf":        "junegunn/fzf",
	"jq":         "jqlang/jq",
	"gh":         "cli/cli",
	"delta":      "dandavison/delta",
	"direnv":     "direnv/direnv",
	"shellcheck": "koalaman/shellcheck",
	"shfmt":      "mvdan/sh",
	"tmux":       "tmux/tmux",
	"lazygit":    "jesseduffield/lazygit",
	"hyperfine":  "sharkdp/hyperfine",
	"gron":       "tomnomnom/gron",
	"yq":         "mikefarah/yq",
	"dive":       "wagoodman/dive",
	"k9s":        "derailed/k9s",
	"kubectx":    "ahmetb/kubectx",
	"gopls":      "golang.org/x/tools/gopls",
}

// ExpandShorthand resolves a bare tool name written with no backend prefix
// (e.g. "ripgrep" rather than "aqua:BurntSushi/ripgrep") to the aqua
// registry package it stands for. ok is false for names ExpandShorthand
// doesn't recognise, in which case the caller falls back to treating the
// bare name as its own aqua package id.
func ExpandShorthand(name string) (pkg string, ok bool) {
	pkg, ok = shorthandMap[strings.ToLower(name)]
	return pkg, ok
}

// RefFor builds a Ref for a tool name as written in a vertool.toml [tools]
// table: a "backend:name" prefix selects the backend directly, with
// "vfox-plugin:<plugin>" special-cased since ParseKind's recognised-prefix
// switch doesn't include it (dispatch.pluginNameFor recovers the plugin
// name from Ref.Name instead of the prefix); a bare name is expanded
// through ExpandShorthand first and otherwise falls back to the aqua
// registry with the name unchanged.
func RefFor(name string, options map[string]string) Ref {
	if plugin, ok := strings.CutPrefix(name, "vfox-plugin:"); ok {
		return Ref{Backend: KindVfoxPlugin, Name: plugin, Options: options}
	}

	if prefix, rest, ok := strings.Cut(name, ":"); ok {
		if kind := ParseKind(prefix); kind != KindUnknown {
			return Ref{Backend: kind, Name: rest, Options: options}
		}
	}

	if pkg, ok := ExpandShorthand(name); ok {
		return Ref{Backend: KindAqua, Name: pkg, Options: options}
	}

	return Ref{Backend: KindAqua, Name: name, Options: options}
}
