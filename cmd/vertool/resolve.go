package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var resolveOutput string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the tool-version config stack to concrete versions",
	Long: `Resolve walks the vertool.toml stack rooted at the current directory,
applies alias substitution and inner-wins precedence (spec §4.H), and asks
each tool's backend for the concrete version its request selects. It does
not install anything.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "text", "Output format (text, json)")
}

type resolvedTool struct {
	Name    string `json:"name"`
	Backend string `json:"backend"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

func runResolve(cmd *cobra.Command, _ []string) error {
	app, err := loadAppContext()
	if err != nil {
		return err
	}

	refs := refsFor(app.entries)
	resolved := make([]resolvedTool, 0, len(app.entries))
	for _, e := range app.entries {
		ref := refs[e.Name]
		version, err := app.dispatcher.ResolveVersion(cmd.Context(), ref, e.Request)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", e.Name, err)
		}
		resolved = append(resolved, resolvedTool{
			Name:    e.Name,
			Backend: string(ref.Backend),
			Version: version,
			Source:  e.Source,
		})
	}

	if resolveOutput == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	}

	for _, r := range resolved {
		cmd.Printf("%-20s %-8s %-15s %s\n", r.Name, r.Backend, r.Version, r.Source)
	}
	return nil
}
