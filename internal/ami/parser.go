package ami

import (
	"bufio"
	"io"
	"strings"
)

// Parser reads a manager-interface byte stream and emits Events. Records are
// "Key: Value" lines terminated by a blank line.
type Parser struct {
	scanner *bufio.Scanner
}

// NewParser creates a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{scanner: bufio.NewScanner(r)}
}

// Next reads the next record from the stream. Returns the event and true, or
// a zero Event and false at end of stream.
func (p *Parser) Next() (Event, bool) {
	fields := make(map[string]string)

	for p.scanner.Scan() {
		// The wire uses \r\n line endings.
		line := strings.TrimRight(p.scanner.Text(), "\r")

		if line == "" {
			if len(fields) > 0 {
				return Event{fields: fields}, true
			}
			continue
		}

		key, value, found := strings.Cut(line, ": ")
		if !found {
			// Banner and continuation noise carry no colon; skip it.
			continue
		}
		fields[strings.ToLower(key)] = value
	}

	if len(fields) > 0 {
		return Event{fields: fields}, true
	}
	return Event{}, false
}
