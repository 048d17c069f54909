// Package install implements the Install Orchestrator (spec §4.J): it walks
// a composed Toolset Plan layer by layer, resolving each item's version and
// artifact through the Backend Dispatcher, fetching and verifying the
// artifact, extracting or running its install command, and recording the
// outcome in the Lockfile Manager.
//
// Adapted from the teacher's internal/installer/engine: same per-layer,
// semaphore-bounded concurrent execution with continue-on-error semantics
// within a layer, re-pointed from the CUE resource/state/reconciler model at
// backend.Ref/toolset.Plan/lockfile.Manager.
package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/semaphore"

	"github.com/vertool/vertool/internal/backend"
	"github.com/vertool/vertool/internal/extract"
	"github.com/vertool/vertool/internal/httpclient"
	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/platform"
	"github.com/vertool/vertool/internal/toolset"
	"github.com/vertool/vertool/internal/verify"
)

// DefaultParallelism mirrors the teacher engine's default concurrent
// installation count.
const DefaultParallelism = 5

// ProgressFunc reports a tool's download progress, forwarded from
// httpclient.Options.Progress.
type ProgressFunc func(name string, downloaded, total int64)

// Result records what happened for one toolset.Item.
type Result struct {
	Name       string
	Version    string
	InstallDir string
	BinPaths   []string
	Skipped    bool
	Err        error
}

// Orchestrator wires the Backend Dispatcher, HTTP client, verifiers and
// Lockfile Manager together to install a composed Plan.
type Orchestrator struct {
	Dispatcher  *backend.Dispatcher
	HTTP        *httpclient.Client
	Verifiers   []verify.Verifier
	InstallRoot string
	Parallelism int
	Progress    ProgressFunc

	// RequireVerification fails the install when every configured Verifier
	// skips (no attestation could be checked at all), rather than silently
	// trusting the checksum alone.
	RequireVerification bool

	// Refresh bypasses the hard error a lockfile/resolved-artifact URL or
	// checksum mismatch would otherwise raise (spec §4.J step 2), refetching
	// and overwriting the entry instead.
	Refresh bool
}

// New creates an Orchestrator with teacher-engine defaults.
func New(dispatcher *backend.Dispatcher, httpClient *httpclient.Client, installRoot string) *Orchestrator {
	return &Orchestrator{
		Dispatcher:  dispatcher,
		HTTP:        httpClient,
		InstallRoot: installRoot,
		Parallelism: DefaultParallelism,
	}
}

// Install runs plan to completion against key's platform, recording every
// successfully installed tool into lock. Layers execute in order; items
// within a layer run concurrently, bounded by Parallelism, with
// continue-on-error semantics matching the teacher engine's
// executeNodesParallel (a failing item doesn't cancel its layer siblings,
// but the layer's collected errors abort before the next layer starts).
func (o *Orchestrator) Install(ctx context.Context, plan *toolset.Plan, key platform.Key, lock *lockfile.Manager) ([]Result, error) {
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lockfile: %w", err)
	}
	defer lock.Unlock()

	file, err := lock.Load()
	if err != nil {
		return nil, fmt.Errorf("load lockfile: %w", err)
	}

	var all []Result
	for i, layer := range plan.Layers {
		slog.Debug("installing layer", "layer", i, "items", len(layer.Items))
		results, layerErr := o.installLayer(ctx, layer, key, file)
		all = append(all, results...)
		if err := lock.Save(file); err != nil {
			return all, fmt.Errorf("save lockfile after layer %d: %w", i, err)
		}
		if layerErr != nil {
			return all, layerErr
		}
	}
	return all, nil
}

func (o *Orchestrator) installLayer(ctx context.Context, layer toolset.Layer, key platform.Key, file *lockfile.File) ([]Result, error) {
	parallelism := o.Parallelism
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}
	sem := semaphore.NewWeighted(int64(parallelism))

	var (
		mu      sync.Mutex
		results []Result
		errs    []error
		wg      sync.WaitGroup
	)

	for _, item := range layer.Items {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		item := item
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			result := o.installItem(ctx, item, key, file, &mu)

			mu.Lock()
			results = append(results, result)
			if result.Err != nil {
				errs = append(errs, fmt.Errorf("install %s: %w", result.Name, result.Err))
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results, errors.Join(errs...)
}

// installItem resolves, fetches, verifies, and extracts (or command-runs)
// one item, then records it into file under the held lockfile mutex.
func (o *Orchestrator) installItem(ctx context.Context, item toolset.Item, key platform.Key, file *lockfile.File, fileMu *sync.Mutex) Result {
	name := item.Ref.Name
	result := Result{Name: name}

	version, err := o.Dispatcher.ResolveVersion(ctx, item.Ref, item.Request)
	if err != nil {
		result.Err = fmt.Errorf("resolve version: %w", err)
		return result
	}
	result.Version = version

	platformKey := key.String()

	toolLock, err := acquireToolLock(o.InstallRoot, name)
	if err != nil {
		result.Err = fmt.Errorf("acquire tool lock: %w", err)
		return result
	}
	defer toolLock.Unlock() //nolint:errcheck

	fileMu.Lock()
	existing, known := file.Get(name, platformKey)
	fileMu.Unlock()

	resolved, err := o.Dispatcher.Resolve(ctx, item.Ref, version, key)
	if err != nil {
		result.Err = fmt.Errorf("resolve artifact: %w", err)
		return result
	}

	// Self-healing: a matching lockfile entry with its install directory
	// still present is treated as already satisfied. A mismatching entry is
	// a hard error unless Refresh is set (spec §4.J step 2).
	installDir := filepath.Join(o.InstallRoot, name, version)
	if known {
		if existing.Matches(resolved.URL, resolved.ChecksumURL) {
			if info, statErr := os.Stat(installDir); statErr == nil && info.IsDir() {
				result.InstallDir = installDir
				result.BinPaths = existing.BinPaths
				result.Skipped = true
				return result
			}
		} else if !o.Refresh {
			result.Err = fmt.Errorf("resolved artifact for %s %s does not match locked entry (url/checksum changed); rerun with --refresh to overwrite", name, version)
			return result
		}
	}

	if resolved.Command != nil {
		if err := o.installCommand(ctx, resolved.Command); err != nil {
			result.Err = fmt.Errorf("run install command: %w", err)
			return result
		}
		result.InstallDir = installDir
		o.recordEntry(file, fileMu, name, platformKey, resolved, nil, version)
		return result
	}

	if resolved.URL == "" {
		result.Err = errors.New("backend resolved neither a download URL nor an install command")
		return result
	}

	artifactPath, err := o.fetchAndVerify(ctx, name, version, resolved)
	if err != nil {
		result.Err = err
		return result
	}
	defer os.Remove(artifactPath)

	if err := o.extractArtifact(artifactPath, resolved, installDir); err != nil {
		result.Err = fmt.Errorf("extract: %w", err)
		return result
	}

	binPaths := resolved.BinPaths
	if len(binPaths) == 0 {
		binPaths = []string{installDir}
	}
	result.InstallDir = installDir
	result.BinPaths = binPaths
	o.recordEntry(file, fileMu, name, platformKey, resolved, binPaths, version)
	return result
}

func (o *Orchestrator) recordEntry(file *lockfile.File, fileMu *sync.Mutex, name, platformKey string, resolved *backend.Resolved, binPaths []string, version string) {
	fileMu.Lock()
	defer fileMu.Unlock()
	file.Set(name, platformKey, lockfile.Entry{
		URL:        resolved.URL,
		Checksum:   resolved.ChecksumURL,
		BinPaths:   binPaths,
		Version:    version,
		ResolvedAt: nowRFC3339(),
	})
}

func (o *Orchestrator) fetchAndVerify(ctx context.Context, name, version string, resolved *backend.Resolved) (string, error) {
	dest := filepath.Join(os.TempDir(), "vertool-fetch", name, version, filepath.Base(resolved.URL))

	outcome, err := o.HTTP.Fetch(ctx, resolved.URL, dest, httpclient.Options{
		Progress: func(downloaded, total int64) {
			if o.Progress != nil {
				o.Progress(name, downloaded, total)
			}
		},
	})
	if err != nil || outcome == httpclient.Failed {
		return "", fmt.Errorf("fetch %s: %w", resolved.URL, err)
	}

	if err := o.runAttestations(ctx, name, version, dest, resolved); err != nil {
		os.Remove(dest)
		return "", err
	}

	return dest, nil
}

// runAttestations checks dest against every configured verify.Verifier, plus
// a checksum.Verify wrapped as one more Verifier so the checksum and
// signature/attestation checks share the same skip/fail accounting (spec
// §4.J step 4).
func (o *Orchestrator) runAttestations(ctx context.Context, name, version, path string, resolved *backend.Resolved) error {
	verifiers := o.Verifiers
	if resolved.Algorithm != "" {
		verifiers = append([]verify.Verifier{&verify.ChecksumVerifier{
			Algorithm: resolved.Algorithm,
			Expected:  resolved.ChecksumURL,
		}}, verifiers...)
	}
	if len(verifiers) == 0 {
		return nil
	}
	artifact := verify.ArtifactRef{Tool: name, Version: version, Path: path}
	allSkipped := true
	for _, v := range verifiers {
		res, err := v.Verify(ctx, artifact)
		if err != nil {
			return fmt.Errorf("verify %s: %w", name, err)
		}
		if !res.Skipped {
			allSkipped = false
			if !res.Verified {
				return fmt.Errorf("attestation %s failed: %s", res.Method, res.Reason)
			}
		}
	}
	if allSkipped && o.RequireVerification {
		return errors.New("no attestation method could be applied and verification is required")
	}
	return nil
}

// extractArtifact extracts artifactPath into a staging directory next to
// installDir and only renames it into place once extraction succeeds, so a
// crash or error mid-extract never leaves a half-extracted directory at
// installDir (spec §4.J steps 3 and 7). Any staging leftover from a prior
// interrupted run is removed before extracting.
func (o *Orchestrator) extractArtifact(artifactPath string, resolved *backend.Resolved, installDir string) error {
	stagingDir := fmt.Sprintf("%s.staging-%d", installDir, os.Getpid())

	if err := os.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("clean staging leftover: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(stagingDir), 0o755); err != nil {
		return fmt.Errorf("create install parent directory: %w", err)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	format := resolved.Format
	if format == "" {
		format = extract.DetectArchiveType(resolved.AssetName)
	}
	if format == "" {
		format = extract.ArchiveTypeRaw
	}

	extractor, err := extract.NewExtractor(format)
	if err != nil {
		return err
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	if err := extractor.Extract(f, stagingDir); err != nil {
		return err
	}

	// Raw and single-file extractors name the binary after the directory
	// they write into; name it after the tool instead of the staging dir.
	staged := filepath.Join(stagingDir, filepath.Base(stagingDir))
	if _, err := os.Stat(staged); err == nil {
		if err := os.Rename(staged, filepath.Join(stagingDir, filepath.Base(filepath.Dir(installDir)))); err != nil {
			return fmt.Errorf("rename extracted binary: %w", err)
		}
	}

	if err := os.RemoveAll(installDir); err != nil {
		return fmt.Errorf("remove previous install directory: %w", err)
	}
	if err := os.Rename(stagingDir, installDir); err != nil {
		return fmt.Errorf("rename staging directory into place: %w", err)
	}
	return nil
}

func acquireToolLock(installRoot, name string) (*flock.Flock, error) {
	if err := os.MkdirAll(installRoot, 0o755); err != nil {
		return nil, err
	}
	lockPath := filepath.Join(installRoot, "."+name+".lock")
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, err
	}
	return fl, nil
}

// nowRFC3339 is the sole place the orchestrator reads the wall clock, so a
// test can override it for a deterministic ResolvedAt timestamp.
var nowRFC3339 = func() string {
	return time.Now().UTC().Format(time.RFC3339)
}
