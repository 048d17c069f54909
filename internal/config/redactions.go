package config

import "os"

// Redactions is an ordered, de-duplicated set of templated strings a
// vertool.toml's [redactions] array declares. Each entry is rendered
// against the process environment (spec §9's "variables are redacted from
// logs" requirement, grounded on original_source/src/redactions.rs's
// IndexSet<String>). Order is preserved rather than sorted: the original
// renders in declaration order, and later duplicate insertions are no-ops
// the way IndexSet treats them.
type Redactions []string

// Merge appends other's entries after c's, skipping anything already
// present, mirroring IndexSet::extend's de-duplicating insert.
func (c Redactions) Merge(other Redactions) Redactions {
	if len(other) == 0 {
		return c
	}
	seen := make(map[string]bool, len(c))
	for _, v := range c {
		seen[v] = true
	}
	merged := append(Redactions{}, c...)
	for _, v := range other {
		if seen[v] {
			continue
		}
		seen[v] = true
		merged = append(merged, v)
	}
	return merged
}

// Render resolves every "${VAR}"/"$VAR" reference in each entry against
// the process environment, in place. No pack or ecosystem library offers
// generic key-value string templating outside the narrow,
// Vars-struct-shaped internal/template (asset-name rendering only) or
// yosida95/uritemplate (URI templates, wrong domain); os.Expand is the
// stdlib's own "${NAME}" substitution primitive and is the justified
// stdlib-only choice here.
func (c Redactions) Render() Redactions {
	rendered := make(Redactions, len(c))
	for i, v := range c {
		rendered[i] = os.Expand(v, os.Getenv)
	}
	return rendered
}

// IsEmpty reports whether no redaction pattern has been declared.
func (c Redactions) IsEmpty() bool {
	return len(c) == 0
}
