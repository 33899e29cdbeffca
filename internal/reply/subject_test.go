package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectFilter(t *testing.T) {
	f := NewSubjectFilter("Task Reminder - Tasks Due")

	accepted := []string{
		"Task Reminder - Tasks Due",
		"Re: task reminder - tasks due",
		"RE:   Task Reminder - Tasks Due",
		"Fwd: Task Reminder - Tasks Due",
		"fwd:Task Reminder - Tasks Due  ",
		"  Task Reminder - Tasks Due",
	}
	for _, s := range accepted {
		assert.True(t, f.Accept(s), "subject %q", s)
	}

	rejected := []string{
		"Task Reminder",
		"",
		"Re: Re: Task Reminder - Tasks Due",
		"Fw: Task Reminder - Tasks Due",
		"Task Reminder - Tasks Due (2)",
		"  re: TASK REMINDER - TASKS DUE",
	}
	for _, s := range rejected {
		assert.False(t, f.Accept(s), "subject %q", s)
	}
}

func TestNormalizeSubject(t *testing.T) {
	assert.Equal(t, "task reminder - tasks due", NormalizeSubject("Re: Task Reminder - Tasks Due"))
	assert.Equal(t, "hello", NormalizeSubject("FWD:   Hello "))
	assert.Equal(t, "fwd:   hello", NormalizeSubject("  FWD:   Hello "))
	assert.Equal(t, "", NormalizeSubject(""))
}

func TestEmptySubjectFilterRejectsEverything(t *testing.T) {
	assert.False(t, NewSubjectFilter("").Accept(""))
}
