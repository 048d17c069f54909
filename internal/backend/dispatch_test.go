package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/vertool/vertool/internal/platform"
)

// redirectTransport rewrites every request's host to target, so code with a
// hardcoded api.github.com URL can be pointed at an httptest server.
type redirectTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	req.Host = t.target.Host
	return t.base.RoundTrip(req)
}

func TestResolveVersionExactAndRefBypassBackend(t *testing.T) {
	d := NewDispatcher(nil, nil, "")
	v, err := d.ResolveVersion(context.Background(), Ref{Backend: KindGithub, Name: "cli/cli"}, VersionRequest{Kind: VersionExact, Exact: "v2.86.0"})
	if err != nil || v != "v2.86.0" {
		t.Fatalf("exact version: got (%q, %v)", v, err)
	}
	v, err = d.ResolveVersion(context.Background(), Ref{Backend: KindAsdf, Name: "x"}, VersionRequest{Kind: VersionRef, Ref: "system"})
	if err != nil || v != "system" {
		t.Fatalf("ref version: got (%q, %v)", v, err)
	}
}

func TestResolveGithubReleasePicksAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"tag_name": "v2.86.0",
			"assets": [
				{"name": "gh_2.86.0_linux_amd64.tar.gz", "browser_download_url": "https://example.com/linux.tar.gz"},
				{"name": "gh_2.86.0_macOS_amd64.tar.gz", "browser_download_url": "https://example.com/darwin.tar.gz"}
			]
		}`))
	}))
	defer srv.Close()

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	client := srv.Client()
	client.Transport = &redirectTransport{target: target, base: http.DefaultTransport}

	d := NewDispatcher(client, nil, "")
	resolved, err := d.resolveGithubRelease(context.Background(), Ref{Backend: KindGithub, Name: "cli/cli"}, "v2.86.0",
		platform.Key{OS: "linux", Arch: "amd64"}, nil)
	if err != nil {
		t.Fatalf("resolveGithubRelease: %v", err)
	}
	if resolved.AssetName != "gh_2.86.0_linux_amd64.tar.gz" {
		t.Errorf("expected linux asset chosen, got %q", resolved.AssetName)
	}
	if resolved.URL != "https://example.com/linux.tar.gz" {
		t.Errorf("unexpected url %q", resolved.URL)
	}
}

func TestResolveHTTPBackendTemplatesURL(t *testing.T) {
	d := NewDispatcher(nil, nil, "")
	resolved, err := d.resolveHTTP(Ref{Backend: KindHTTP, Name: "https://example.com/tool-{{.OS}}-{{.Arch}}-{{.Version}}.tar.gz"},
		"1.2.3", platform.Key{OS: "linux", Arch: "amd64"})
	if err != nil {
		t.Fatalf("resolveHTTP: %v", err)
	}
	want := "https://example.com/tool-linux-amd64-1.2.3.tar.gz"
	if resolved.URL != want {
		t.Errorf("expected %q, got %q", want, resolved.URL)
	}
}

func TestResolveCommandBackends(t *testing.T) {
	cases := []struct {
		kind Kind
		name string
		want string
	}{
		{KindNpm, "eslint", "npm"},
		{KindCargo, "ripgrep", "cargo"},
		{KindPipx, "black", "pipx"},
	}
	for _, c := range cases {
		resolved := resolveCommand(Ref{Backend: c.kind, Name: c.name}, "1.0.0")
		if resolved.Command == nil || resolved.Command.Name != c.want {
			t.Errorf("%s: expected command %q, got %+v", c.kind, c.want, resolved.Command)
		}
	}
}
