package toolset

import (
	"errors"
	"testing"

	"github.com/vertool/vertool/internal/backend"
)

func item(name string, kind backend.Kind, depends ...string) Item {
	return Item{Ref: backend.Ref{Backend: kind, Name: name}, DependsOn: depends}
}

func TestComposeOrdersExplicitDependency(t *testing.T) {
	items := []Item{
		item("eslint", backend.KindNpm, "node"),
		item("node", backend.KindCore),
	}
	plan, err := Compose(items)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(plan.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(plan.Layers))
	}
	if plan.Layers[0].Items[0].Ref.Name != "node" {
		t.Errorf("expected node in first layer, got %+v", plan.Layers[0])
	}
	if plan.Layers[1].Items[0].Ref.Name != "eslint" {
		t.Errorf("expected eslint in second layer, got %+v", plan.Layers[1])
	}
}

func TestComposeImplicitBackendDependency(t *testing.T) {
	items := []Item{
		item("prettier", backend.KindNpm),
		item("node", backend.KindCore),
	}
	plan, err := Compose(items)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(plan.Layers) != 2 {
		t.Fatalf("expected implicit npm->node edge to yield 2 layers, got %d", len(plan.Layers))
	}
}

func TestComposeIndependentToolsShareALayer(t *testing.T) {
	items := []Item{
		item("ripgrep", backend.KindGithub),
		item("fzf", backend.KindGithub),
	}
	plan, err := Compose(items)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(plan.Layers) != 1 || len(plan.Layers[0].Items) != 2 {
		t.Fatalf("expected one layer with both tools, got %+v", plan.Layers)
	}
}

func TestComposeDetectsCycle(t *testing.T) {
	items := []Item{
		item("a", backend.KindGithub, "b"),
		item("b", backend.KindGithub, "a"),
	}
	_, err := Compose(items)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if len(cycleErr.Path) == 0 {
		t.Error("expected non-empty cycle path")
	}
}
