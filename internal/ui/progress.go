package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/vertool/vertool/internal/install"
)

// InstallResults tallies an Install Orchestrator run's outcomes for the
// end-of-run summary.
type InstallResults struct {
	Installed int
	Skipped   int
	Failed    int
}

// ProgressManager renders download progress bars and command output for an
// Install Orchestrator run. Ported from the teacher's
// internal/ui/progress.go: same mpb/fatih-color/go-isatty TTY-vs-plain
// rendering split, re-pointed from engine.Event at install.Result plus the
// Orchestrator's per-download ProgressFunc callback.
type ProgressManager struct {
	mu                  sync.Mutex
	w                   io.Writer
	isTTY               bool
	progress            *mpb.Progress
	bars                map[string]*mpb.Bar
	cmdView             *CommandView
	downloadHeaderShown bool
}

// NewProgressManager creates a new progress manager.
func NewProgressManager(w io.Writer) *ProgressManager {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	pm := &ProgressManager{
		w:       w,
		isTTY:   isTTY,
		bars:    make(map[string]*mpb.Bar),
		cmdView: NewCommandView(w, isTTY),
	}

	if isTTY {
		pm.progress = mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	}

	return pm
}

// Wait blocks until every progress bar has finished rendering.
func (pm *ProgressManager) Wait() {
	if pm.progress != nil {
		pm.progress.Wait()
	}
}

// StartDownload registers a bar for name before its fetch begins. kind is
// a short label (the tool's backend, e.g. "github" or "npm") shown beside
// the name.
func (pm *ProgressManager) StartDownload(name, kind, version string) {
	style := NewStyle()

	pm.mu.Lock()
	defer pm.mu.Unlock()

	showHeader := !pm.downloadHeaderShown && !pm.isTTY
	pm.downloadHeaderShown = true

	if pm.isTTY {
		pm.bars[name] = pm.progress.AddBar(0,
			mpb.BarFillerClearOnComplete(),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("  %s %s/%s ",
					style.SuccessMark, kind, style.Path.Sprint(name)),
					decor.WC{W: 30, C: decor.DindentRight}),
				decor.Name(version, decor.WC{W: 12}),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f"),
				decor.OnComplete(decor.Name(""), " done"),
			),
		)
		return
	}

	if showHeader {
		fmt.Fprintln(pm.w)
		fmt.Fprintln(pm.w, "Downloads:")
	}
	fmt.Fprintf(pm.w, "  %s %s/%s %s\n", style.SuccessMark, kind, style.Path.Sprint(name), version)
}

// Progress is an install.ProgressFunc: it updates name's bar as bytes
// arrive. Safe to pass straight to Orchestrator.Progress.
func (pm *ProgressManager) Progress(name string, downloaded, total int64) {
	if !pm.isTTY {
		return
	}
	pm.mu.Lock()
	bar, ok := pm.bars[name]
	pm.mu.Unlock()
	if !ok {
		return
	}
	if total > 0 {
		bar.SetTotal(total, false)
	}
	bar.SetCurrent(downloaded)
}

// FinishDownload closes out name's bar once its fetch has settled (success
// or failure).
func (pm *ProgressManager) FinishDownload(name string, err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar, ok := pm.bars[name]
	if !ok {
		return
	}
	if err != nil {
		if pm.isTTY {
			bar.Abort(true)
		} else {
			style := NewStyle()
			fmt.Fprintf(pm.w, "  %s %s failed: %v\n", style.FailMark, name, err)
		}
	} else if pm.isTTY {
		bar.SetTotal(bar.Current(), true)
	}
	delete(pm.bars, name)
}

// StartCommand registers a command-backend task (cargo/npm/gem/pipx/go/
// dotnet/spm install) for output display.
func (pm *ProgressManager) StartCommand(name, kind, version, method string) {
	pm.cmdView.StartTask(name, kind, name, version, method)
	if !pm.isTTY {
		pm.cmdView.PrintTaskStart(name)
	}
}

// CommandOutput records one line of a running command task's output.
func (pm *ProgressManager) CommandOutput(name, line string) {
	pm.cmdView.AddOutput(name, line)
	if !pm.isTTY {
		pm.cmdView.PrintOutput(line)
	}
}

// FinishCommand closes out a command task.
func (pm *ProgressManager) FinishCommand(name string, err error) {
	if err != nil {
		pm.cmdView.FailTask(name, err)
	} else {
		pm.cmdView.CompleteTask(name)
	}
	if !pm.isTTY {
		pm.cmdView.PrintTaskComplete(name)
	}
}

// Summarize folds an Install Orchestrator run's []install.Result into an
// InstallResults tally for PrintInstallSummary.
func Summarize(results []install.Result) InstallResults {
	var r InstallResults
	for _, res := range results {
		switch {
		case res.Err != nil:
			r.Failed++
		case res.Skipped:
			r.Skipped++
		default:
			r.Installed++
		}
	}
	return r
}

// PrintInstallSummary prints the run's tallies, mirroring the teacher's
// apply summary layout.
func PrintInstallSummary(w io.Writer, results InstallResults) {
	style := NewStyle()

	total := results.Installed + results.Skipped
	if total == 0 && results.Failed == 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s No changes to apply\n", style.SuccessMark)
		return
	}

	fmt.Fprintln(w)
	style.Header.Fprintln(w, "Summary:")

	if results.Installed > 0 {
		fmt.Fprintf(w, "  %s Installed: %d\n", style.SuccessMark, results.Installed)
	}
	if results.Skipped > 0 {
		fmt.Fprintf(w, "  %s Skipped:   %d\n", style.SkipMark, results.Skipped)
	}
	if results.Failed > 0 {
		fmt.Fprintf(w, "  %s Failed:    %d\n", style.FailMark, results.Failed)
	}

	fmt.Fprintln(w)
	if results.Failed == 0 {
		style.Success.Fprintln(w, "Install complete!")
	} else {
		color.New(color.FgRed, color.Bold).Fprintln(w, "Install completed with errors")
	}
}

// maxFailureLogLines is the maximum number of output lines to display per
// failed tool.
const maxFailureLogLines = 20

// PrintFailureDetails prints each failed install.Result's error, and any
// captured command output, after a run completes.
func PrintFailureDetails(w io.Writer, results []install.Result, output map[string]string) {
	var failed []install.Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	style := NewStyle()

	fmt.Fprintln(w)
	style.Header.Fprintln(w, "Failure Details:")

	for _, f := range failed {
		fmt.Fprintf(w, "\n  %s %s@%s: %v\n", style.FailMark, f.Name, f.Version, f.Err)

		out := output[f.Name]
		if out == "" {
			continue
		}

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		totalLines := len(lines)

		if totalLines > maxFailureLogLines {
			lines = lines[totalLines-maxFailureLogLines:]
			fmt.Fprintf(w, "    ... (%d lines omitted, see: vertool log %s)\n", totalLines-maxFailureLogLines, f.Name)
		}
		for _, line := range lines {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}
