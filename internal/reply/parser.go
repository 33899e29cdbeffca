// Package reply extracts completion reports from the text of reminder replies.
package reply

import (
	"regexp"
	"strings"
)

// completionLine is the grammar people type into replies:
//
//	Completed: <task name> on <date>
var completionLine = regexp.MustCompile(`(?i)^Completed:\s*(.+?)\s+on\s+(.+)$`)

// Completion is one "task completed on date" assertion taken from a reply.
type Completion struct {
	Line     string
	TaskName string
	DateText string
}

// Unrecognized is a retained line that did not match the completion grammar.
type Unrecognized struct {
	Line string
}

// Line is one retained, non-blank line of a reply. Completion is nil when
// the line does not match the grammar.
type Line struct {
	Text       string
	Completion *Completion
}

// Result holds the lines of one reply in their original order, plus the
// completions and unrecognized lines split out.
type Result struct {
	Lines        []Line
	Completions  []Completion
	Unrecognized []Unrecognized
}

// NewContent returns the trimmed lines of body that precede the first quote
// boundary: a line starting with ">", "On " or "From:".
func NewContent(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var lines []string
	for _, raw := range strings.Split(strings.TrimSpace(body), "\n") {
		line := strings.TrimSpace(raw)
		if isQuoteBoundary(line) {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

func isQuoteBoundary(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(line, ">") ||
		strings.HasPrefix(lower, "on ") ||
		strings.HasPrefix(lower, "from:")
}

// ParseLine matches a single trimmed line against the completion grammar.
func ParseLine(line string) (Completion, bool) {
	m := completionLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Completion{}, false
	}
	c := Completion{
		Line:     line,
		TaskName: strings.TrimSpace(m[1]),
		DateText: strings.TrimSpace(m[2]),
	}
	return c, c.TaskName != "" && c.DateText != ""
}

// Parse extracts every completion from the new content of body. Repeated
// tasks are kept as separate items; blank lines are ignored.
func Parse(body string) Result {
	var res Result
	for _, line := range NewContent(body) {
		if line == "" {
			continue
		}
		if c, ok := ParseLine(line); ok {
			res.Completions = append(res.Completions, c)
			res.Lines = append(res.Lines, Line{Text: line, Completion: &c})
			continue
		}
		res.Unrecognized = append(res.Unrecognized, Unrecognized{Line: line})
		res.Lines = append(res.Lines, Line{Text: line})
	}
	return res
}
