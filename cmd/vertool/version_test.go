package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionCmd_Text(t *testing.T) {
	var buf bytes.Buffer
	versionFormat = "text"
	versionCmd.SetOut(&buf)
	versionCmd.SetArgs([]string{})

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "vertool version") {
		t.Fatalf("output missing version line: %q", out)
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	var buf bytes.Buffer
	versionFormat = outputJSON
	versionCmd.SetOut(&buf)

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	var info VersionInfo
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal: %v, output: %q", err, buf.String())
	}
	if info.Version == "" {
		t.Fatal("expected non-empty version")
	}

	versionFormat = "text"
}
