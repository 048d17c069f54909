// Package template implements the Aqua-style mini-language used to render
// asset and URL strings: identifiers, string literals, function calls,
// pipes, and a parenthesised semver selector. It is a bespoke tokenizer and
// recursive-descent parser rather than text/template, because the
// "(semver EXPR).Major" selector is not expressible in Go's template
// grammar.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	vterrors "github.com/vertool/vertool/internal/errors"
)

// Vars is the rendering context passed to a template. Fields map to the
// context documented in the Package Resolver: Version, SemVer, OS, GOOS,
// Arch, GOARCH, Format.
type Vars struct {
	Version string
	SemVer  string
	OS      string
	GOOS    string
	Arch    string
	GOARCH  string
	Format  string
}

func (v Vars) lookup(key string) (string, bool) {
	switch key {
	case "Version":
		return v.Version, true
	case "SemVer":
		return v.SemVer, true
	case "OS":
		return v.OS, true
	case "GOOS":
		return v.GOOS, true
	case "Arch":
		return v.Arch, true
	case "GOARCH":
		return v.GOARCH, true
	case "Format":
		return v.Format, true
	default:
		return "", false
	}
}

var titleCaser = cases.Title(language.Und)

// funcs is the closed table of template functions. Each takes its final
// (possibly piped-in) argument last.
var funcs = map[string]func(args []string) (string, error){
	"title": func(args []string) (string, error) {
		return titleCaser.String(args[len(args)-1]), nil
	},
	"trimV": func(args []string) (string, error) {
		return strings.TrimPrefix(args[len(args)-1], "v"), nil
	},
	"trimPrefix": func(args []string) (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("trimPrefix requires 2 arguments, got %d", len(args))
		}
		return strings.TrimPrefix(args[1], args[0]), nil
	},
	"trimSuffix": func(args []string) (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("trimSuffix requires 2 arguments, got %d", len(args))
		}
		return strings.TrimSuffix(args[1], args[0]), nil
	},
	"replace": func(args []string) (string, error) {
		if len(args) != 3 {
			return "", fmt.Errorf("replace requires 3 arguments, got %d", len(args))
		}
		return strings.ReplaceAll(args[2], args[0], args[1]), nil
	},
}

// Render renders a template string against vars. It delimits mini-language
// expressions with "{{" and "}}"; text outside delimiters passes through
// unchanged.
func Render(src string, vars Vars) (string, error) {
	var out strings.Builder
	rest := src
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])
		rest = rest[start+2:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			return "", vterrors.NewTemplateError(src, len(src)-len(rest), "unterminated {{ expression", nil)
		}
		expr := rest[:end]
		rest = rest[end+2:]

		val, err := evalExpr(src, expr, vars)
		if err != nil {
			return "", err
		}
		out.WriteString(val)
	}
	return out.String(), nil
}

// evalExpr parses and evaluates a single "{{ ... }}" body: a pipe chain of
// terms, where the first term is a value expression and subsequent terms
// are bare function names applied to the prior result.
func evalExpr(src, expr string, vars Vars) (string, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return "", vterrors.NewTemplateError(src, 0, err.Error(), err)
	}
	p := &parser{toks: toks, src: src, vars: vars}
	val, err := p.parsePipeline()
	if err != nil {
		return "", err
	}
	if p.pos != len(p.toks) {
		return "", vterrors.NewTemplateError(src, 0, fmt.Sprintf("unexpected trailing token %q", p.toks[p.pos].text), nil)
	}
	return val, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokKey
	tokString
	tokPipe
	tokLParen
	tokRParen
	tokDot
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an expression body into Ident | Key | String | Pipe |
// LParen | RParen | Dot tokens, skipping whitespace.
func tokenize(expr string) ([]token, error) {
	var toks []token
	i := 0
	n := len(expr)
	for i < n {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '|':
			toks = append(toks, token{tokPipe, "|"})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '.':
			j := i + 1
			for j < n && (isIdentByte(expr[j])) {
				j++
			}
			if j == i+1 {
				toks = append(toks, token{tokDot, "."})
				i = j
				continue
			}
			toks = append(toks, token{tokKey, expr[i+1 : j]})
			i = j
		case c == '"':
			j := i + 1
			for j < n && expr[j] != '"' {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("unterminated string literal")
			}
			toks = append(toks, token{tokString, expr[i+1 : j]})
			i = j + 1
		case isIdentByte(c):
			j := i
			for j < n && isIdentByte(expr[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, expr[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q in template expression", c)
		}
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

type parser struct {
	toks []token
	pos  int
	src  string
	vars Vars
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// parsePipeline parses one top-level value followed by zero or more
// "| func" stages, left to right.
func (p *parser) parsePipeline() (string, error) {
	val, err := p.parseValue()
	if err != nil {
		return "", err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokPipe {
			break
		}
		p.next()
		fnTok, ok := p.next()
		if !ok || fnTok.kind != tokIdent {
			return "", vterrors.NewTemplateError(p.src, 0, "expected function name after '|'", nil)
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return "", err
		}
		args = append(args, val)
		val, err = callFunc(p.src, fnTok.text, args)
		if err != nil {
			return "", err
		}
	}
	return val, nil
}

// parseValue parses a key lookup, a string literal, a function call, or a
// parenthesised semver selector.
func (p *parser) parseValue() (string, error) {
	t, ok := p.peek()
	if !ok {
		return "", vterrors.NewTemplateError(p.src, 0, "empty template expression", nil)
	}
	switch t.kind {
	case tokKey:
		p.next()
		v, found := p.vars.lookup(t.text)
		if !found {
			return "", vterrors.NewTemplateError(p.src, 0, fmt.Sprintf("missing key %q", t.text), nil)
		}
		return v, nil
	case tokString:
		p.next()
		return t.text, nil
	case tokLParen:
		return p.parseSemverSelector()
	case tokIdent:
		p.next()
		args, err := p.parseCallArgs()
		if err != nil {
			return "", err
		}
		return callFunc(p.src, t.text, args)
	default:
		return "", vterrors.NewTemplateError(p.src, 0, fmt.Sprintf("unexpected token %q", t.text), nil)
	}
}

// parseCallArgs greedily consumes value expressions (keys and strings) as
// arguments to a bare function call, e.g. `trimPrefix "foo-" .Version`.
func (p *parser) parseCallArgs() ([]string, error) {
	var args []string
	for {
		t, ok := p.peek()
		if !ok || (t.kind != tokKey && t.kind != tokString) {
			break
		}
		p.next()
		if t.kind == tokString {
			args = append(args, t.text)
			continue
		}
		v, found := p.vars.lookup(t.text)
		if !found {
			return nil, vterrors.NewTemplateError(p.src, 0, fmt.Sprintf("missing key %q", t.text), nil)
		}
		args = append(args, v)
	}
	return args, nil
}

// parseSemverSelector parses "(semver EXPR).Major|.Minor|.Patch" (or the
// bare "(semver EXPR)" form, which yields the parsed version string).
func (p *parser) parseSemverSelector() (string, error) {
	p.next() // consume '('
	fnTok, ok := p.next()
	if !ok || fnTok.kind != tokIdent || fnTok.text != "semver" {
		return "", vterrors.NewTemplateError(p.src, 0, "expected 'semver' inside parentheses", nil)
	}
	args, err := p.parseCallArgs()
	if err != nil {
		return "", err
	}
	if len(args) != 1 {
		return "", vterrors.NewTemplateError(p.src, 0, "semver selector requires exactly one argument", nil)
	}
	closeTok, ok := p.next()
	if !ok || closeTok.kind != tokRParen {
		return "", vterrors.NewTemplateError(p.src, 0, "expected ')' after semver argument", nil)
	}

	raw := strings.TrimPrefix(args[0], "v")
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", vterrors.NewTemplateError(p.src, 0, fmt.Sprintf("invalid semver %q", raw), err)
	}

	keyTok, ok := p.peek()
	if !ok || keyTok.kind != tokKey {
		return raw, nil
	}
	p.next()
	switch keyTok.text {
	case "Major":
		return strconv.FormatUint(v.Major(), 10), nil
	case "Minor":
		return strconv.FormatUint(v.Minor(), 10), nil
	case "Patch":
		return strconv.FormatUint(v.Patch(), 10), nil
	default:
		return "", vterrors.NewTemplateError(p.src, 0, fmt.Sprintf("unsupported semver property %q, want Major|Minor|Patch", keyTok.text), nil)
	}
}

func callFunc(src, name string, args []string) (string, error) {
	fn, ok := funcs[name]
	if !ok {
		return "", vterrors.NewTemplateError(src, 0, fmt.Sprintf("unknown function %q", name), nil)
	}
	v, err := fn(args)
	if err != nil {
		return "", vterrors.NewTemplateError(src, 0, err.Error(), err)
	}
	return v, nil
}
