package iptables

import (
	"strings"
	"unicode"

	"github.com/livp123/netxconf/pkg/errors"
)

// Stats counts what a parse kept and what it dropped.
// Stats 统计一次解析保留与丢弃的内容。
type Stats struct {
	Tables          int
	Chains          int
	Rules           int
	UnparsedTokens  int
	SkippedLines    int
	DuplicateTables int
}

// ParseDocument parses iptables-save text. Anything before the first "*name"
// line is discarded. It fails with errors.ErrFormat when no table marker
// exists. A table name given twice keeps the last block and is reported in
// Document.DuplicateTables.
// ParseDocument 解析 iptables-save 文本。
func ParseDocument(text string) (*Document, error) {
	doc, _, err := ParseDocumentWithStats(text)
	return doc, err
}

// ParseDocumentStrict is ParseDocument but rejects duplicate table names with
// errors.ErrDuplicateTable.
func ParseDocumentStrict(text string) (*Document, error) {
	doc, err := ParseDocument(text)
	if err != nil {
		return nil, err
	}
	if len(doc.DuplicateTables) > 0 {
		return nil, errors.NewDuplicateTableError(doc.DuplicateTables[0])
	}
	return doc, nil
}

// ParseDocumentWithStats parses text and reports counters for the run.
func ParseDocumentWithStats(text string) (*Document, Stats, error) {
	var stats Stats
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if isTableMarker(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, stats, errors.NewFormatError("no '*' table marker found")
	}

	doc := NewDocument()
	var (
		name  string
		table *Table
	)
	commit := func() {
		if table == nil {
			return
		}
		if _, dup := doc.tables[name]; dup {
			doc.DuplicateTables = append(doc.DuplicateTables, name)
			stats.DuplicateTables++
		}
		doc.Set(name, table)
		table = nil
	}

	for _, raw := range lines[start:] {
		line := strings.TrimSpace(raw)
		switch {
		case isTableMarker(line):
			commit()
			name = strings.TrimSpace(strings.TrimPrefix(line, "*"))
			if name == "" {
				stats.SkippedLines++
				continue
			}
			table = &Table{}
		case line == "" || strings.HasPrefix(line, "#") || line == "COMMIT":
		case table == nil:
			stats.SkippedLines++
		case strings.HasPrefix(line, ":"):
			table.Chains = append(table.Chains, line)
			stats.Chains++
		case isRuleLine(line):
			r := ExtractFields(line)
			stats.UnparsedTokens += len(r.Unparsed)
			table.Rules = append(table.Rules, r)
			stats.Rules++
		default:
			stats.SkippedLines++
		}
	}
	commit()

	stats.Tables = doc.Len()
	return doc, stats, nil
}

func isTableMarker(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "*")
}

func isRuleLine(line string) bool {
	return len(line) > 3 && strings.HasPrefix(line, "-A") && unicode.IsSpace(rune(line[2]))
}
