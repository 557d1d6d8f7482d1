package env

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ResolveError reports a failure in the source-resolution phase: an
// unknown global option, an unreadable config file, or a resolver
// rejecting a source value.
type ResolveError struct {
	Msg string
	Err error
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// ParseError reports an unusable config-file line with its location.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// entry is one key/value pair read from a config file.
type entry struct {
	key  string
	raw  string
	line int
}

// parseConfig reads the line-oriented `key: value` format. Blank lines and
// #-led lines are ignored. Keys are normalized like setting identifiers.
func parseConfig(name string, r io.Reader) ([]entry, error) {
	var entries []entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, found := strings.Cut(line, ":")
		if !found {
			return nil, &ParseError{File: name, Line: lineNo, Msg: fmt.Sprintf("expected `key: value`, got %q", line)}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &ParseError{File: name, Line: lineNo, Msg: "empty key"}
		}
		entries = append(entries, entry{key: key, raw: strings.TrimSpace(raw), line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return entries, nil
}
