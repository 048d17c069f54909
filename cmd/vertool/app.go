package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vertool/vertool/internal/backend"
	"github.com/vertool/vertool/internal/config"
	"github.com/vertool/vertool/internal/github"
	"github.com/vertool/vertool/internal/path"
	"github.com/vertool/vertool/internal/registry/aqua"
	"github.com/vertool/vertool/internal/toolset"
	"github.com/vertool/vertool/internal/toolversion"
)

// defaultAquaRegistryRef pins the aqua-registry tag the AquaResolver fetches
// package definitions from when a vertool.toml doesn't override it.
const defaultAquaRegistryRef = "v4.405.0"

// appContext bundles the collaborators every subcommand needs after
// discovering and folding the vertool.toml stack rooted at the current
// directory (spec §4.H).
type appContext struct {
	cfg        *config.Config
	paths      *path.Paths
	entries    []toolversion.Entry
	dispatcher *backend.Dispatcher
}

// loadAppContext discovers the vertool.toml stack from configDir (or the
// working directory), folds its [settings] tables, and resolves its [tools]
// entries (spec §4.H steps 1-3). It does not resolve versions; that's each
// command's job against the returned Dispatcher.
func loadAppContext() (*appContext, error) {
	dir := configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		dir = wd
	}

	userConfigPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		userConfigPath = filepath.Join(home, ".config", "vertool", toolversion.FileName)
	}

	stackPaths, err := toolversion.FindStack(dir, userConfigPath)
	if err != nil {
		return nil, fmt.Errorf("find config stack: %w", err)
	}

	cfg, err := config.LoadStack(stackPaths)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}

	paths, err := path.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	stack, err := toolversion.LoadStack(stackPaths)
	if err != nil {
		return nil, fmt.Errorf("load tool-version stack: %w", err)
	}
	entries := toolversion.Resolve(stack)

	httpClient := github.NewHTTPClient(github.TokenFromEnv())
	aquaResolver := aqua.NewResolver(filepath.Join(paths.UserCacheDir(), "aqua-registry"), httpClient)
	dispatcher := backend.NewDispatcher(httpClient, aquaResolver, defaultAquaRegistryRef)

	return &appContext{cfg: cfg, paths: paths, entries: entries, dispatcher: dispatcher}, nil
}

// refsFor builds the tool-name -> backend.Ref lookup the Toolset Composer
// needs (spec §4.G's backend dispatch, performed ahead of composition).
func refsFor(entries []toolversion.Entry) map[string]backend.Ref {
	refs := make(map[string]backend.Ref, len(entries))
	for _, e := range entries {
		refs[e.Name] = backend.RefFor(e.Name, e.Options)
	}
	return refs
}

// buildPlan composes the Toolset Composer's layered install plan (spec
// §4.I) from the discovered [tools] entries.
func (a *appContext) buildPlan() (*toolset.Plan, error) {
	items := toolset.FromResolved(a.entries, refsFor(a.entries))
	return toolset.Compose(items)
}
