package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandView_PrintTaskStart_PrintsHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	v := NewCommandView(&buf, false)

	v.StartTask("gopls", "go", "gopls", "0.16.0", "go install")
	v.PrintTaskStart("gopls")

	v.StartTask("ripgrep", "github", "ripgrep", "14.1.1", "download")
	v.PrintTaskStart("ripgrep")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "Commands:"))
	assert.Contains(t, out, "go/gopls 0.16.0 (go install)")
	assert.Contains(t, out, "github/ripgrep 14.1.1 (download)")
}

func TestCommandView_PrintOutput(t *testing.T) {
	var buf bytes.Buffer
	v := NewCommandView(&buf, false)

	v.PrintOutput("compiling module...")

	assert.Contains(t, buf.String(), "compiling module...")
}

func TestCommandView_PrintTaskComplete_Success(t *testing.T) {
	var buf bytes.Buffer
	v := NewCommandView(&buf, false)

	v.StartTask("gopls", "go", "gopls", "0.16.0", "go install")
	v.CompleteTask("gopls")
	v.PrintTaskComplete("gopls")

	assert.Contains(t, buf.String(), "go/gopls 0.16.0 done")
}

func TestCommandView_PrintTaskComplete_Failure(t *testing.T) {
	var buf bytes.Buffer
	v := NewCommandView(&buf, false)

	v.StartTask("gopls", "go", "gopls", "0.16.0", "go install")
	v.FailTask("gopls", errors.New("exit status 1"))
	v.PrintTaskComplete("gopls")

	out := buf.String()
	assert.Contains(t, out, "go/gopls failed")
	assert.Contains(t, out, "exit status 1")
}

func TestCommandView_AddOutput_CircularBuffer(t *testing.T) {
	var buf bytes.Buffer
	v := NewCommandView(&buf, false)

	v.StartTask("gopls", "go", "gopls", "0.16.0", "go install")
	for i := 0; i < defaultMaxLogLines+3; i++ {
		v.AddOutput("gopls", "line")
	}

	v.mu.Lock()
	task := v.tasks["gopls"]
	logLen := len(task.logs)
	v.mu.Unlock()

	assert.Equal(t, defaultMaxLogLines, logLen)
}

func TestCommandView_AddOutput_IgnoresDoneTask(t *testing.T) {
	var buf bytes.Buffer
	v := NewCommandView(&buf, false)

	v.StartTask("gopls", "go", "gopls", "0.16.0", "go install")
	v.CompleteTask("gopls")
	v.AddOutput("gopls", "should be ignored")

	v.mu.Lock()
	task := v.tasks["gopls"]
	v.mu.Unlock()

	assert.Nil(t, task.logs)
}

func TestTruncateLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		maxLen int
		want   string
	}{
		{"short line unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "0123456789", 10, "0123456789"},
		{"long line truncated", "0123456789abcdef", 10, "0123456..."},
		{"trims surrounding whitespace", "  hello  ", 10, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateLine(tt.line, tt.maxLen)
			assert.Equal(t, tt.want, got)
		})
	}
}
