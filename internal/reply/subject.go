package reply

import (
	"regexp"
	"strings"
)

var replyPrefix = regexp.MustCompile(`(?i)^(re:|fwd:)\s*`)

// SubjectFilter accepts replies to the reminder email and nothing else.
type SubjectFilter struct {
	want string
}

// NewSubjectFilter returns a filter matching the given reminder subject
// case-insensitively.
func NewSubjectFilter(reminderSubject string) *SubjectFilter {
	return &SubjectFilter{want: strings.ToLower(strings.TrimSpace(reminderSubject))}
}

// NormalizeSubject strips one "Re:" or "Fwd:" prefix at the very start of
// subject, then trims the surrounding whitespace and lower-cases the rest. A
// prefix behind leading whitespace is not stripped.
func NormalizeSubject(subject string) string {
	subject = replyPrefix.ReplaceAllString(subject, "")
	return strings.ToLower(strings.TrimSpace(subject))
}

// Accept reports whether subject is a reply to the reminder. A mismatch is
// not an error; the message is simply not processed for updates.
func (f *SubjectFilter) Accept(subject string) bool {
	if f.want == "" {
		return false
	}
	return NormalizeSubject(subject) == f.want
}
