package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
	// Force is set when the name ends in '!', confirming a destructive action.
	Force bool
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if name, ok := strings.CutSuffix(cmd.Name, "!"); ok {
		cmd.Name, cmd.Force = name, true
	}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// Fields splits Args on whitespace.
func (c Command) Fields() []string {
	return strings.Fields(c.Args)
}

// parseOnOff reads a switch argument. Empty means on.
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// parsePoll splits "question | option | option" into its parts.
func parsePoll(s string) (string, []string, error) {
	parts := strings.Split(s, "|")
	var opts []string
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	q := strings.TrimSpace(parts[0])
	if q == "" || len(opts) < 2 {
		return "", nil, errors.New("usage: poll <question> | <option> | <option>...")
	}
	return q, opts, nil
}

// muteDuration accepts Go durations plus "d" and "w" units, e.g. "8h", "1w".
// It returns the duration in a form time.ParseDuration understands.
func muteDuration(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("missing duration")
	}
	unit := map[byte]time.Duration{'d': 24 * time.Hour, 'w': 7 * 24 * time.Hour}
	if mult, ok := unit[s[len(s)-1]]; ok {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid duration %q", s)
		}
		return (time.Duration(n) * mult).String(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return "", fmt.Errorf("invalid duration %q", s)
	}
	return d.String(), nil
}

// parseIndex reads a 1-based list position.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a number from 1, got %q", s)
	}
	return n, nil
}
