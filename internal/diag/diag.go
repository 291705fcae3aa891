// Package diag implements the typed diagnostic bag shared by every
// compilation pass (C12). Diagnostics are values, never exceptions:
// each pass writes into a bag keyed by severity and span, per §7.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/btscript/btc/internal/lexer"
)

// Severity is one of error, warning, or info.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler diagnostic, per the §3 data model.
type Diagnostic struct {
	Code        Code
	Severity    Severity
	Span        lexer.Span
	File        string
	Message     string
	MessageArgs []string
}

// Format renders the diagnostic with source context and a caret
// indicator, in the manner of the teacher's CompilerError.Format.
func (d Diagnostic) Format(source string, color bool) string {
	var sb strings.Builder
	if d.File != "" {
		fmt.Fprintf(&sb, "%s: %s[%s] in %s:%s\n", d.Severity, d.Code, d.Code, d.File, d.Span.Start)
	} else {
		fmt.Fprintf(&sb, "%s: %s[%s] at %s\n", d.Severity, d.Code, d.Code, d.Span.Start)
	}

	line := sourceLine(source, d.Span.Start.Line)
	if line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Span.Start.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+d.Span.Start.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Bag accumulates diagnostics for a single file during a pipeline run.
// It is an append-only value collector, never a throw/catch channel.
type Bag struct {
	diags []Diagnostic
	file  string
}

// NewBag creates an empty diagnostic bag for the named file.
func NewBag(file string) *Bag {
	return &Bag{file: file}
}

func (b *Bag) add(code Code, sev Severity, span lexer.Span, msg string, args ...string) {
	b.diags = append(b.diags, Diagnostic{
		Code: code, Severity: sev, Span: span, File: b.file,
		Message: msg, MessageArgs: args,
	})
}

// Errorf records an error-severity diagnostic.
func (b *Bag) Errorf(code Code, span lexer.Span, format string, args ...any) {
	b.add(code, Error, span, fmt.Sprintf(format, args...))
}

// Warnf records a warning-severity diagnostic.
func (b *Bag) Warnf(code Code, span lexer.Span, format string, args ...any) {
	b.add(code, Warning, span, fmt.Sprintf(format, args...))
}

// Infof records an info-severity diagnostic.
func (b *Bag) Infof(code Code, span lexer.Span, format string, args ...any) {
	b.add(code, Info, span, fmt.Sprintf(format, args...))
}

// ICE records an internal-compiler-error (BS0901): reserved for
// invariant violations detected at the engine boundary (e.g. a
// recovered panic), per §7.
func (b *Bag) ICE(span lexer.Span, format string, args ...any) {
	b.add(BS0901, Error, span, fmt.Sprintf(format, args...))
}

// All returns every recorded diagnostic, sorted by position.
func (b *Bag) All() []Diagnostic {
	out := make([]Diagnostic, len(b.diags))
	copy(out, b.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Offset < out[j].Span.Start.Offset
	})
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
// Per §7's propagation policy, this suppresses IR emission to
// downstream consumers (but the IR cache itself is still populated).
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Merge appends another bag's diagnostics into b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.diags = append(b.diags, other.diags...)
}

// Count returns the number of diagnostics of a given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for _, d := range b.diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
