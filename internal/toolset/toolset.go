// Package toolset builds the Toolset Composer's install plan (spec §4.I): a
// DAG over resolved tool entries, cycle-checked and topologically layered so
// the Install Orchestrator can run each layer's frontier concurrently.
//
// The DAG uses three-color DFS cycle detection and Kahn's-algorithm layering
// with a per-layer deterministic sort, over backend.Ref nodes plus the
// explicit `depends` edges a toolset entry declares.
package toolset

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vertool/vertool/internal/backend"
	"github.com/vertool/vertool/internal/toolversion"
)

// Item is one entry destined for the install plan: a backend reference, its
// resolved version request, and any declared dependency names (spec §4.I:
// "edges are declared `depends` and implicit dependencies").
type Item struct {
	Ref     backend.Ref
	Request backend.VersionRequest
	Options map[string]string
	Source  string
	// DependsOn names other Items (by Ref.Name) this one must install after.
	DependsOn []string
}

// FromResolved builds Items from toolversion.Resolve's output plus a lookup
// from tool name to backend.Ref (the Backend Dispatcher's job, §4.G,
// performed by the caller before composing the toolset).
func FromResolved(entries []toolversion.Entry, refs map[string]backend.Ref) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		ref, ok := refs[e.Name]
		if !ok {
			ref = backend.Ref{Backend: backend.KindUnknown, Name: e.Name}
		}
		var depends []string
		if d, ok := e.Options["depends"]; ok && d != "" {
			depends = append(depends, d)
		}
		items = append(items, Item{
			Ref:       ref,
			Request:   e.Request,
			Options:   e.Options,
			Source:    e.Source,
			DependsOn: depends,
		})
	}
	return items
}

// implicitDependency reports a backend-priority edge the spec requires even
// when no `depends` option is written: backends whose install step shells
// out to another language runtime (npm, pipx, gem) implicitly depend on
// that runtime's own tool entry being installed first, when present.
func implicitDependency(k backend.Kind) (string, bool) {
	switch k {
	case backend.KindNpm:
		return "node", true
	case backend.KindPipx:
		return "python", true
	case backend.KindGem:
		return "ruby", true
	case backend.KindCargo:
		return "rust", true
	case backend.KindGo:
		return "go", true
	default:
		return "", false
	}
}

// Plan is the composed, cycle-checked install plan: an ordered list of
// Layers, each a set of Items with no dependency edges between them.
type Plan struct {
	Layers []Layer
}

// Layer is a set of Items safe to install concurrently.
type Layer struct {
	Items []Item
}

// Compose builds a Plan from items, adding implicit backend-priority edges
// to any present dependency by name, detecting cycles, and topologically
// layering the result (spec §4.I).
func Compose(items []Item) (*Plan, error) {
	g := newGraph()
	byName := make(map[string]bool, len(items))
	for _, it := range items {
		byName[it.Ref.Name] = true
	}
	for _, it := range items {
		g.addNode(it)
	}
	for _, it := range items {
		for _, dep := range it.DependsOn {
			if !byName[dep] {
				continue
			}
			g.addEdge(it.Ref.Name, dep)
		}
		if dep, ok := implicitDependency(it.Ref.Backend); ok && byName[dep] && dep != it.Ref.Name {
			g.addEdge(it.Ref.Name, dep)
		}
	}

	if cycle := g.detectCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	layers := g.topologicalLayers()
	return &Plan{Layers: layers}, nil
}

// CycleError reports a dependency cycle (spec §7 CycleDetected).
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %v", e.Path)
}

// graph is the internal Kahn's-algorithm + three-color-DFS DAG, keyed by
// tool name with Item payloads.
type graph struct {
	items    map[string]Item
	edges    map[string]map[string]struct{} // name -> set of names it depends on
	inDegree map[string]int
	order    []string // insertion order, for deterministic iteration
}

func newGraph() *graph {
	return &graph{
		items:    make(map[string]Item),
		edges:    make(map[string]map[string]struct{}),
		inDegree: make(map[string]int),
	}
}

func (g *graph) addNode(it Item) {
	name := it.Ref.Name
	if _, exists := g.items[name]; exists {
		return
	}
	g.items[name] = it
	g.inDegree[name] = 0
	g.order = append(g.order, name)
}

func (g *graph) addEdge(from, to string) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]struct{})
	}
	if _, exists := g.edges[from][to]; !exists {
		g.edges[from][to] = struct{}{}
		g.inDegree[from]++
	}
}

type nodeColor int

const (
	white nodeColor = iota
	gray
	black
)

func (g *graph) detectCycle() []string {
	color := make(map[string]nodeColor, len(g.items))
	parent := make(map[string]string, len(g.items))
	var cycle []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		for dep := range g.edges[node] {
			if color[dep] == gray {
				cycle = []string{dep}
				for curr := node; curr != dep; curr = parent[curr] {
					cycle = append(cycle, curr)
				}
				cycle = append(cycle, dep)
				slices.Reverse(cycle)
				return true
			}
			if color[dep] == white {
				parent[dep] = node
				if dfs(dep) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	for _, name := range g.order {
		if color[name] == white {
			if dfs(name) {
				return cycle
			}
		}
	}
	return nil
}

// topologicalLayers runs Kahn's algorithm, grouping same-layer nodes (no
// dependency edges between them) and sorting each layer by name for a
// deterministic, reproducible plan.
func (g *graph) topologicalLayers() []Layer {
	inDegree := make(map[string]int, len(g.inDegree))
	maps.Copy(inDegree, g.inDegree)

	reverse := make(map[string][]string, len(g.items))
	for from, deps := range g.edges {
		for dep := range deps {
			reverse[dep] = append(reverse[dep], from)
		}
	}

	var queue []string
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var layers []Layer
	for len(queue) > 0 {
		slices.Sort(queue)
		layer := Layer{Items: make([]Item, 0, len(queue))}
		var next []string
		for _, name := range queue {
			layer.Items = append(layer.Items, g.items[name])
			for _, dependent := range reverse[name] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		layers = append(layers, layer)
		queue = next
	}
	return layers
}
