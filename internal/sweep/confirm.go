package sweep

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"orphansweep/internal/scanner"
)

// Decision is one outcome of the confirmation prompt.
type Decision int

const (
	DecisionYes Decision = iota
	DecisionNo
	DecisionAll
	DecisionQuit
)

// confirm asks whether one orphan should be deleted. Dry-run and
// auto-delete modes short-circuit to yes without prompting.
func (s *Sweeper) confirm(rec scanner.FileRecord) (Decision, error) {
	fmt.Fprintf(s.out, "\nOrphan file detected\n")
	fmt.Fprintf(s.out, "  File: %s\n", rec.Name())
	fmt.Fprintf(s.out, "  Path: %s\n", rec.Path)
	fmt.Fprintf(s.out, "  Size: %s\n", humanize.IBytes(uint64(rec.Size)))
	fmt.Fprintf(s.out, "  Date: %s\n", rec.ModTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.out, "This file does not exist in any destination.\n")

	if s.opts.DryRun {
		fmt.Fprintf(s.out, "[dry-run] Would be deleted\n")
		return DecisionYes, nil
	}
	if s.opts.AutoDelete {
		fmt.Fprintf(s.out, "Automatic deletion enabled\n")
		return DecisionYes, nil
	}

	for {
		fmt.Fprintf(s.out, "Delete this file? ([Y]es/n/a/q): ")
		answer, err := s.readLine()
		if err != nil {
			return DecisionQuit, err
		}

		decision, ok := parseAnswer(answer)
		if ok {
			return decision, nil
		}
		fmt.Fprintf(s.out, "Invalid answer. Use: y (yes) / n (no) / a (all) / q (quit)\n")
	}
}

// promptYesNo asks a secondary yes/no question, defaulting to no.
func (s *Sweeper) promptYesNo(question string) bool {
	fmt.Fprintf(s.out, "%s (y/N): ", question)
	answer, err := s.readLine()
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (s *Sweeper) readLine() (string, error) {
	if !s.stdin.Scan() {
		if err := s.stdin.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("input closed")
	}
	return s.stdin.Text(), nil
}

func parseAnswer(answer string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return DecisionYes, true
	case "n", "no":
		return DecisionNo, true
	case "a", "all":
		return DecisionAll, true
	case "q", "quit":
		return DecisionQuit, true
	default:
		return DecisionNo, false
	}
}
