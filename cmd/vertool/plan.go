package main

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the install plan without installing anything",
	Long: `Plan composes the Toolset Composer's layered install plan (spec §4.I):
a DAG over the resolved [tools] entries, with implicit backend-priority edges
(npm/pipx/gem/cargo/go tools install after their language runtime) added
and cycles rejected, printed layer by layer in the order Install would run
them.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, _ []string) error {
	app, err := loadAppContext()
	if err != nil {
		return err
	}

	plan, err := app.buildPlan()
	if err != nil {
		return err
	}

	if len(plan.Layers) == 0 {
		cmd.Println("No tools declared in the config stack.")
		return nil
	}

	for i, layer := range plan.Layers {
		cmd.Printf("Layer %d:\n", i+1)
		for _, item := range layer.Items {
			cmd.Printf("  %-20s %s:%s  %s\n", item.Ref.Name, item.Ref.Backend, item.Request, item.Source)
		}
	}
	return nil
}
