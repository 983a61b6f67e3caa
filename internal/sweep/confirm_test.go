package sweep

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orphansweep/internal/scanner"
	"orphansweep/pkg/log"
)

func testRecord() scanner.FileRecord {
	return scanner.FileRecord{
		Path:    "/media/downloads/Some.Movie.2024.mkv",
		Size:    700 * 1024 * 1024,
		ModTime: time.Unix(1700000000, 0),
	}
}

func promptSweeper(input string, opts Options) (*Sweeper, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Sweeper{
		log:   log.NewNopLogger(),
		opts:  opts,
		stdin: bufio.NewScanner(strings.NewReader(input)),
		out:   out,
	}, out
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		answer   string
		decision Decision
		ok       bool
	}{
		{"", DecisionYes, true},
		{"y", DecisionYes, true},
		{"YES ", DecisionYes, true},
		{"n", DecisionNo, true},
		{"No", DecisionNo, true},
		{"a", DecisionAll, true},
		{"all", DecisionAll, true},
		{"q", DecisionQuit, true},
		{"quit", DecisionQuit, true},
		{"bogus", DecisionNo, false},
	}

	for _, tc := range tests {
		decision, ok := parseAnswer(tc.answer)
		assert.Equal(t, tc.ok, ok, "answer %q", tc.answer)
		if tc.ok {
			assert.Equal(t, tc.decision, decision, "answer %q", tc.answer)
		}
	}
}

func TestConfirmDryRunNeverPrompts(t *testing.T) {
	s, out := promptSweeper("", Options{DryRun: true})

	decision, err := s.confirm(testRecord())
	require.NoError(t, err)
	assert.Equal(t, DecisionYes, decision)
	assert.Contains(t, out.String(), "[dry-run]")
}

func TestConfirmAutoDeleteNeverPrompts(t *testing.T) {
	s, _ := promptSweeper("", Options{AutoDelete: true})

	decision, err := s.confirm(testRecord())
	require.NoError(t, err)
	assert.Equal(t, DecisionYes, decision)
}

func TestConfirmRetriesInvalidAnswer(t *testing.T) {
	s, out := promptSweeper("bogus\ny\n", Options{})

	decision, err := s.confirm(testRecord())
	require.NoError(t, err)
	assert.Equal(t, DecisionYes, decision)
	assert.Contains(t, out.String(), "Invalid answer")
}

func TestConfirmQuit(t *testing.T) {
	s, _ := promptSweeper("q\n", Options{})

	decision, err := s.confirm(testRecord())
	require.NoError(t, err)
	assert.Equal(t, DecisionQuit, decision)
}

func TestConfirmAll(t *testing.T) {
	s, _ := promptSweeper("a\n", Options{})

	decision, err := s.confirm(testRecord())
	require.NoError(t, err)
	assert.Equal(t, DecisionAll, decision)
}

func TestConfirmClosedInputFails(t *testing.T) {
	s, _ := promptSweeper("", Options{})

	_, err := s.confirm(testRecord())
	require.Error(t, err)
}

func TestPromptYesNo(t *testing.T) {
	s, _ := promptSweeper("y\n", Options{})
	assert.True(t, s.promptYesNo("Delete?"))

	s, _ = promptSweeper("whatever\n", Options{})
	assert.False(t, s.promptYesNo("Delete?"))

	// Closed input defaults to no
	s, _ = promptSweeper("", Options{})
	assert.False(t, s.promptYesNo("Delete?"))
}
