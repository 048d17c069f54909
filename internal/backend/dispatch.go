package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vertool/vertool/internal/asset"
	"github.com/vertool/vertool/internal/checksum"
	"github.com/vertool/vertool/internal/extract"
	"github.com/vertool/vertool/internal/github"
	"github.com/vertool/vertool/internal/platform"
	"github.com/vertool/vertool/internal/registry/aqua"
	"github.com/vertool/vertool/internal/template"
)

// Resolved is the installable artifact a Dispatcher produces for a Ref at a
// concrete version (spec §3 Resolved Artifact), or, for a language
// package-manager backend, a Command to run instead of fetching a URL.
type Resolved struct {
	Version     string
	URL         string
	AssetName   string
	Format      extract.ArchiveType
	Algorithm   checksum.Algorithm
	ChecksumURL string
	BinPaths    []string
	EnvInstall  map[string]string
	Command     *Command
}

// Command is an install invocation produced by a language package-manager
// backend (cargo install, npm install -g, gem install, pipx install, go
// install, dotnet tool install, swift package).
type Command struct {
	Name string
	Args []string
}

// PluginResolver is satisfied by the Plugin Sandbox (internal/plugin) for
// the Asdf/Vfox/VfoxPlugin backends (spec §4.F). Declared here rather than
// imported directly so the backend package has no dependency on the script
// VM; internal/install wires the concrete implementation in.
type PluginResolver interface {
	ResolveVersion(ctx context.Context, pluginName string, req VersionRequest) (string, error)
	Resolve(ctx context.Context, pluginName, version string, key platform.Key) (*Resolved, error)
}

// Dispatcher routes a Ref to the collaborator that resolves and (outside
// the install orchestrator's own fetch step) installs it (spec §4.G).
type Dispatcher struct {
	HTTPClient   *http.Client
	AquaResolver *aqua.Resolver
	AquaRef      aqua.RegistryRef
	Plugin       PluginResolver
}

// NewDispatcher builds a Dispatcher with the given collaborators. aquaRef
// pins the aqua-registry version the AquaResolver fetches package
// definitions from (e.g. "v4.465.0").
func NewDispatcher(httpClient *http.Client, aquaResolver *aqua.Resolver, aquaRef string) *Dispatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Dispatcher{
		HTTPClient:   httpClient,
		AquaResolver: aquaResolver,
		AquaRef:      aqua.RegistryRef(aquaRef),
	}
}

// ResolveVersion returns the concrete version a VersionRequest selects for
// ref: the literal for Exact, the named ref for Ref. For Latest, Range and
// Prefix, the github/gitlab/ubi and aqua/core backends return the latest
// release the upstream reports; the range or prefix is not applied to it.
// Plugin backends resolve the request themselves; the remaining backends
// answer Latest with "latest" and reject Range and Prefix.
func (d *Dispatcher) ResolveVersion(ctx context.Context, ref Ref, req VersionRequest) (string, error) {
	if req.Kind == VersionExact {
		return req.Exact, nil
	}
	if req.Kind == VersionRef {
		return req.Ref, nil
	}

	switch ref.Backend {
	case KindGithub, KindGitlab, KindUbi:
		owner, repo, err := splitOwnerRepo(ref.Name)
		if err != nil {
			return "", err
		}
		return github.GetLatestRelease(ctx, d.HTTPClient, owner, repo, ref.Options["tag_prefix"])
	case KindAqua, KindCore:
		owner, repo, err := splitOwnerRepo(ref.Name)
		if err != nil {
			return "", err
		}
		return d.AquaResolver.VersionClient().GetLatestToolVersion(ctx, owner, repo)
	case KindAsdf, KindVfox, KindVfoxPlugin:
		if d.Plugin == nil {
			return "", fmt.Errorf("backend %s: no plugin resolver configured", ref.Backend)
		}
		return d.Plugin.ResolveVersion(ctx, pluginNameFor(ref), req)
	default:
		// Cargo/Npm/Gem/Pipx/Go/Dotnet/Spm/Http: no version-listing
		// collaborator is in scope; these backends require an explicit
		// version (Exact/Ref) or fall back to their own "latest" alias at
		// install time.
		if req.Kind == VersionLatest {
			return "latest", nil
		}
		return "", fmt.Errorf("backend %s does not support version request %q", ref.Backend, req)
	}
}

// Resolve dispatches ref at version to the backend that produces its
// Resolved Artifact (spec §4.G/§4.E).
func (d *Dispatcher) Resolve(ctx context.Context, ref Ref, version string, key platform.Key) (*Resolved, error) {
	switch ref.Backend {
	case KindAqua, KindCore:
		return d.resolveAqua(ctx, ref, version, key)
	case KindGithub, KindGitlab:
		return d.resolveGithubRelease(ctx, ref, version, key, nil)
	case KindUbi:
		return d.resolveGithubRelease(ctx, ref, version, key, ubiDefaultAssetFilter)
	case KindHTTP:
		return d.resolveHTTP(ref, version, key)
	case KindCargo, KindNpm, KindGem, KindPipx, KindGo, KindDotnet, KindSpm:
		return resolveCommand(ref, version), nil
	case KindAsdf, KindVfox, KindVfoxPlugin:
		if d.Plugin == nil {
			return nil, fmt.Errorf("backend %s: no plugin resolver configured", ref.Backend)
		}
		return d.Plugin.Resolve(ctx, pluginNameFor(ref), version, key)
	default:
		return nil, fmt.Errorf("unsupported backend %q for %s", ref.Backend, ref.Name)
	}
}

func pluginNameFor(ref Ref) string {
	if name, ok := strings.CutPrefix(string(ref.Backend), "vfox-plugin:"); ok {
		return name
	}
	if n := ref.Options["plugin"]; n != "" {
		return n
	}
	return ref.Name
}

func (d *Dispatcher) resolveAqua(ctx context.Context, ref Ref, version string, key platform.Key) (*Resolved, error) {
	src, err := d.AquaResolver.ResolveWithOS(ctx, d.AquaRef, ref.Name, version, goosFor(key), goarchFor(key))
	if err != nil {
		return nil, err
	}
	if len(src.Errors) > 0 {
		return nil, fmt.Errorf("resolve %s@%s: %s", ref.Name, version, strings.Join(src.Errors, "; "))
	}
	return &Resolved{
		Version:     version,
		URL:         src.URL,
		Format:      src.Format,
		Algorithm:   src.Algorithm,
		ChecksumURL: src.ChecksumURL,
	}, nil
}

// resolveGithubRelease lists a release's assets and applies the Asset
// Picker (spec §4.C) to choose the best match for key. filter, when
// non-nil, narrows candidates before scoring (the Ubi backend's
// "opinionated default asset regex", spec §4.G).
func (d *Dispatcher) resolveGithubRelease(ctx context.Context, ref Ref, version string, key platform.Key, filter func([]string) []string) (*Resolved, error) {
	owner, repo, err := splitOwnerRepo(ref.Name)
	if err != nil {
		return nil, err
	}
	tag := version
	if req, ok := ref.Options["tag_prefix"]; ok {
		tag = req + version
	}
	_, assets, err := github.GetReleaseByTag(ctx, d.HTTPClient, owner, repo, tag)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	if filter != nil {
		names = filter(names)
	}
	chosen, ok := asset.Pick(key, names)
	if !ok {
		return nil, fmt.Errorf("no release asset of %s/%s@%s matches %s", owner, repo, version, key)
	}
	var downloadURL string
	for _, a := range assets {
		if a.Name == chosen {
			downloadURL = a.BrowserDownloadURL
			break
		}
	}
	return &Resolved{
		Version:   version,
		URL:       downloadURL,
		AssetName: chosen,
		Format:    formatFromName(chosen),
	}, nil
}

// ubiDefaultAssetFilter mirrors ubi's default asset-matching heuristic:
// prefer assets whose name doesn't look like a checksum/signature/SBOM
// sidecar file, which the Asset Picker would otherwise have to de-prioritize
// one feature at a time.
func ubiDefaultAssetFilter(names []string) []string {
	var filtered []string
	for _, n := range names {
		lower := strings.ToLower(n)
		if strings.HasSuffix(lower, ".sha256") || strings.HasSuffix(lower, ".sha256sum") ||
			strings.HasSuffix(lower, ".sig") || strings.HasSuffix(lower, ".sbom") ||
			strings.HasSuffix(lower, ".asc") || strings.Contains(lower, "checksums") {
			continue
		}
		filtered = append(filtered, n)
	}
	if len(filtered) == 0 {
		return names
	}
	return filtered
}

// resolveHTTP treats ref.Name (or an explicit "url" option) itself as a
// templated URL (spec §4.G: "Http treats the ref itself as a templated URL").
func (d *Dispatcher) resolveHTTP(ref Ref, version string, key platform.Key) (*Resolved, error) {
	tmpl := ref.Options["url"]
	if tmpl == "" {
		tmpl = ref.Name
	}
	rendered, err := template.Render(tmpl, template.Vars{
		Version: version,
		OS:      goosFor(key),
		Arch:    goarchFor(key),
	})
	if err != nil {
		return nil, fmt.Errorf("render http backend url: %w", err)
	}
	return &Resolved{
		Version: version,
		URL:     rendered,
		Format:  formatFromName(rendered),
	}, nil
}

// resolveCommand builds the install command for a language package-manager
// backend (spec §4.G). These backends never produce a download URL; the
// Install Orchestrator runs Command directly instead of fetch/verify/extract.
func resolveCommand(ref Ref, version string) *Resolved {
	spec := versionedName(ref.Name, version)
	var cmd Command
	switch ref.Backend {
	case KindCargo:
		cmd = Command{Name: "cargo", Args: []string{"install", "--version", version, ref.Name}}
	case KindNpm:
		cmd = Command{Name: "npm", Args: []string{"install", "-g", spec}}
	case KindGem:
		cmd = Command{Name: "gem", Args: []string{"install", ref.Name, "-v", version}}
	case KindPipx:
		cmd = Command{Name: "pipx", Args: []string{"install", spec}}
	case KindGo:
		cmd = Command{Name: "go", Args: []string{"install", spec}}
	case KindDotnet:
		cmd = Command{Name: "dotnet", Args: []string{"tool", "install", "--global", ref.Name, "--version", version}}
	case KindSpm:
		cmd = Command{Name: "swift", Args: []string{"build", "-c", "release", "--package-path", ref.Name}}
	}
	return &Resolved{Version: version, Command: &cmd}
}

func versionedName(name, version string) string {
	if version == "" || version == "latest" {
		return name
	}
	return fmt.Sprintf("%s@%s", name, version)
}

func splitOwnerRepo(name string) (owner, repo string, err error) {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected owner/repo, got %q", name)
	}
	return parts[0], parts[1], nil
}

func goosFor(k platform.Key) string  { return k.OS }
func goarchFor(k platform.Key) string { return k.Arch }

func formatFromName(name string) extract.ArchiveType {
	if f := extract.DetectArchiveType(name); f != "" {
		return f
	}
	return extract.ArchiveTypeRaw
}
