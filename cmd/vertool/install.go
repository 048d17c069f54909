package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vertool/vertool/internal/httpclient"
	"github.com/vertool/vertool/internal/install"
	"github.com/vertool/vertool/internal/lockfile"
	"github.com/vertool/vertool/internal/log"
	"github.com/vertool/vertool/internal/platform"
	"github.com/vertool/vertool/internal/ui"
)

var refresh bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Resolve, compose and install the current toolset",
	Long: `Install composes the current toolset's layered plan (spec §4.I) and
runs the Install Orchestrator over it (spec §4.J): each layer's tools
install concurrently, bounded by --jobs, with a failing tool not blocking
its layer siblings but aborting before the next layer starts. Every
installed tool is recorded into vertool-lock.json; a matching lockfile
entry whose install directory is still present is treated as already
satisfied and skipped. A tool whose resolved URL or checksum disagrees
with its lockfile entry is a hard error unless --refresh is passed.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&refresh, "refresh", false, "Overwrite lockfile entries whose resolved URL or checksum no longer match")
}

func runInstall(cmd *cobra.Command, _ []string) error {
	app, err := loadAppContext()
	if err != nil {
		return err
	}

	plan, err := app.buildPlan()
	if err != nil {
		return err
	}

	lock, err := lockfile.New(app.paths.LockfileDir())
	if err != nil {
		return fmt.Errorf("open lockfile: %w", err)
	}

	pm := ui.NewProgressManager(cmd.OutOrStdout())

	orch := install.New(app.dispatcher, httpclient.New(nil), filepath.Join(app.paths.UserDataDir(), "tools"))
	orch.Parallelism = app.cfg.Jobs
	orch.Progress = pm.Progress
	orch.Refresh = refresh

	results, installErr := orch.Install(cmd.Context(), plan, platform.Current(), lock)
	pm.Wait()

	recordSessionLog(app, results)

	summary := ui.Summarize(results)
	ui.PrintInstallSummary(cmd.OutOrStdout(), summary)

	output := make(map[string]string, len(results))
	for _, r := range results {
		if r.Err != nil {
			output[r.Name] = r.Err.Error()
		}
	}
	ui.PrintFailureDetails(cmd.OutOrStdout(), results, output)

	if installErr != nil {
		return fmt.Errorf("install: %w", installErr)
	}
	return nil
}

// recordSessionLog persists a per-session audit log of this install run, so
// a failed tool's output can be inspected later without re-running install
// (spec §4.J's failure reporting). Install's own per-item events aren't
// exposed beyond the final Result slice, so the log is built post-hoc from
// it rather than streamed live.
func recordSessionLog(app *appContext, results []install.Result) {
	store, err := log.NewStore(filepath.Join(app.paths.UserDataDir(), "logs"))
	if err != nil {
		return
	}

	refs := refsFor(app.entries)
	for _, r := range results {
		kind := string(refs[r.Name].Backend)
		store.RecordStart(kind, r.Name, r.Version, "install", "")
		if r.Err != nil {
			store.RecordError(kind, r.Name, r.Err)
		} else {
			store.RecordComplete(kind, r.Name)
		}
	}
	_ = store.Flush()
}
