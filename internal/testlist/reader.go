package testlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry is one content-bearing line of a reference list in file order:
// either a parsed case or the parse failure for that line.
type Entry struct {
	// Number is the 1-based line number in the file.
	Number int
	// Raw is the trimmed line text.
	Raw string
	// Case is valid when Err is nil.
	Case Case
	Err  error
}

// ReadFile parses the reference list at path. Comment and blank lines are
// dropped; every remaining line yields an Entry, malformed ones with Err set.
// Entries preserve file order so callers can interleave diagnostics with
// case execution the way the list reads.
func ReadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference list: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if IsComment(line) {
			continue
		}
		entry := Entry{Number: number, Raw: line}
		entry.Case, entry.Err = ParseLine(line)
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read reference list: %w", err)
	}
	return entries, nil
}
