package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleLine(t *testing.T) {
	res := Parse("Completed: Fire Safety Training on 2023-10-24")

	require.Len(t, res.Completions, 1)
	assert.Equal(t, "Fire Safety Training", res.Completions[0].TaskName)
	assert.Equal(t, "2023-10-24", res.Completions[0].DateText)
	assert.Empty(t, res.Unrecognized)
}

func TestParseGrammarVariants(t *testing.T) {
	cases := []struct {
		line     string
		task     string
		dateText string
	}{
		{"completed: Data Privacy on Oct 24, 2023", "Data Privacy", "Oct 24, 2023"},
		{"COMPLETED:   First Aid   ON   24 Oct 2023", "First Aid", "24 Oct 2023"},
		{"Completed:Ladder Safety on 10/24/2023", "Ladder Safety", "10/24/2023"},
		{"   Completed: Hands on Training on 2023-10-24  ", "Hands", "Training on 2023-10-24"},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			c, ok := ParseLine(tc.line)
			require.True(t, ok)
			assert.Equal(t, tc.task, c.TaskName)
			assert.Equal(t, tc.dateText, c.DateText)
		})
	}
}

func TestParseRejectsOtherLines(t *testing.T) {
	for _, line := range []string{
		"Thanks!",
		"Completed Fire Safety Training on 2023-10-24",
		"Completed: Fire Safety Training",
		"Completed: on 2023-10-24",
		"I Completed: Fire Safety on 2023-10-24",
	} {
		_, ok := ParseLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseStopsAtQuoteBoundary(t *testing.T) {
	boundaries := []string{
		"> Completed: Quoted Task on 2023-01-01",
		"On Tue, Oct 24, 2023 at 9:00 AM Tasks <tasks@example.com> wrote:",
		"From: Tasks <tasks@example.com>",
		"  >> nested",
	}

	for _, boundary := range boundaries {
		t.Run(boundary, func(t *testing.T) {
			body := "Completed: Fire Safety Training on 2023-10-24\n" +
				boundary + "\n" +
				"Completed: Data Privacy Compliance on 2023-10-25\n"

			res := Parse(body)
			require.Len(t, res.Completions, 1)
			assert.Equal(t, "Fire Safety Training", res.Completions[0].TaskName)
			assert.Empty(t, res.Unrecognized)
		})
	}
}

func TestParseKeepsOrderDuplicatesAndNotices(t *testing.T) {
	body := "Hi,\r\n" +
		"\r\n" +
		"Completed: Fire Safety Training on 2023-10-24\r\n" +
		"Completed: Data Privacy Compliance on 2023-10-25\r\n" +
		"Completed: Fire Safety Training on 2023-11-01\r\n" +
		"Regards\r\n"

	res := Parse(body)

	require.Len(t, res.Completions, 3)
	assert.Equal(t, "Fire Safety Training", res.Completions[0].TaskName)
	assert.Equal(t, "Data Privacy Compliance", res.Completions[1].TaskName)
	assert.Equal(t, "Fire Safety Training", res.Completions[2].TaskName)
	assert.Equal(t, "2023-11-01", res.Completions[2].DateText)

	require.Len(t, res.Unrecognized, 2)
	assert.Equal(t, "Hi,", res.Unrecognized[0].Line)
	assert.Equal(t, "Regards", res.Unrecognized[1].Line)

	require.Len(t, res.Lines, 5)
	assert.Equal(t, "Hi,", res.Lines[0].Text)
	assert.Nil(t, res.Lines[0].Completion)
	require.NotNil(t, res.Lines[2].Completion)
	assert.Equal(t, "Data Privacy Compliance", res.Lines[2].Completion.TaskName)
	assert.Equal(t, "Regards", res.Lines[4].Text)
	assert.Nil(t, res.Lines[4].Completion)
}

func TestNewContentEmptyBody(t *testing.T) {
	res := Parse("")
	assert.Empty(t, res.Lines)
	assert.Empty(t, res.Completions)
	assert.Empty(t, res.Unrecognized)
}
