package main

import (
	"fmt"
	"strings"

	"trimscript/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// checkLines renders preflight results with a leading summary line and a
// trailing list of failed required checks.
func checkLines(results []preflight.Result, colorize bool) []string {
	var missing []string
	optionalMissing := 0
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Optional {
			optionalMissing++
			continue
		}
		missing = append(missing, r.Name)
	}

	lines := make([]string, 0, len(results)+2)
	switch {
	case len(missing) > 0:
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d required check(s) failed", len(missing)), colorize))
	case optionalMissing > 0:
		lines = append(lines, renderStatusLine("Summary", statusWarn, fmt.Sprintf("ready, %d optional check(s) unavailable", optionalMissing), colorize))
	default:
		lines = append(lines, renderStatusLine("Summary", statusOK, "all checks passed", colorize))
	}

	for _, r := range results {
		kind := statusOK
		switch {
		case r.Passed:
		case r.Optional:
			kind = statusWarn
		default:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}

	if len(missing) > 0 {
		lines = append(lines, statusIndent+"Failed checks: "+strings.Join(missing, ", "))
	}
	return lines
}
