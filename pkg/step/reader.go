package step

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Record is one parsed DATA-section instance.
type Record struct {
	ID       int
	Keywords []string // one entry for simple instances, several for complex ones
	Refs     []int    // referenced ids in parameter order
	Strings  []string // decoded string parameters in order
	Body     string   // raw text after "#n="
}

// Keyword returns the first (for simple instances, the only) keyword.
func (r Record) Keyword() string {
	if len(r.Keywords) == 0 {
		return ""
	}
	return r.Keywords[0]
}

// Is reports whether the record carries keyword.
func (r Record) Is(keyword string) bool {
	for _, k := range r.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// Document is a parsed exchange file.
type Document struct {
	Header  []Record // FILE_DESCRIPTION, FILE_NAME, FILE_SCHEMA (ID 0)
	Records []Record // DATA section in file order
	byID    map[int]int
}

// Get returns the record with the given id.
func (d *Document) Get(id int) (Record, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Record{}, false
	}
	return d.Records[i], true
}

// Find returns all records carrying keyword, in file order.
func (d *Document) Find(keyword string) []Record {
	var out []Record
	for _, r := range d.Records {
		if r.Is(keyword) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records carrying keyword.
func (d *Document) Count(keyword string) int {
	return len(d.Find(keyword))
}

// KeywordCounts returns the number of records per keyword, complex
// instances counted under each partial keyword.
func (d *Document) KeywordCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Records {
		for _, k := range r.Keywords {
			counts[k]++
		}
	}
	return counts
}

// Keywords returns the distinct keywords in sorted order.
func (d *Document) Keywords() []string {
	keys := lo.Keys(d.KeywordCounts())
	sort.Strings(keys)
	return keys
}

// Parse reads an exchange file.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("step: read: %w", err)
	}
	stmts, err := splitStatements(string(data))
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 || stmts[0] != "ISO-10303-21" {
		return nil, fmt.Errorf("step: missing ISO-10303-21 opening")
	}

	doc := &Document{byID: make(map[int]int)}
	section := ""
	closed := false
	for _, s := range stmts[1:] {
		switch s {
		case "HEADER", "DATA":
			section = s
			continue
		case "ENDSEC":
			section = ""
			continue
		case "END-ISO-10303-21":
			closed = true
			continue
		}
		switch section {
		case "HEADER":
			rec, err := parseInstance(0, s)
			if err != nil {
				return nil, fmt.Errorf("step: header: %w", err)
			}
			doc.Header = append(doc.Header, rec)
		case "DATA":
			rec, err := parseDataStatement(s)
			if err != nil {
				return nil, err
			}
			if _, dup := doc.byID[rec.ID]; dup {
				return nil, fmt.Errorf("step: duplicate record #%d", rec.ID)
			}
			doc.byID[rec.ID] = len(doc.Records)
			doc.Records = append(doc.Records, rec)
		default:
			return nil, fmt.Errorf("step: statement outside any section: %q", s)
		}
	}
	if !closed {
		return nil, fmt.Errorf("step: missing END-ISO-10303-21")
	}
	return doc, nil
}

// splitStatements cuts text into ';'-terminated statements, ignoring
// semicolons inside strings and /* */ comments. Line breaks and comments
// outside strings separate tokens like a space.
func splitStatements(text string) ([]string, error) {
	var stmts []string
	var cur strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\'':
			end, err := stringEnd(text, i)
			if err != nil {
				return nil, err
			}
			cur.WriteString(text[i : end+1])
			i = end
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("step: unterminated comment")
			}
			i += end + 3
			cur.WriteByte(' ')
		case c == ';':
			stmts = append(stmts, strings.TrimSpace(cur.String()))
			cur.Reset()
		case c == '\n' || c == '\r' || c == '\t':
			cur.WriteByte(' ')
		default:
			cur.WriteByte(c)
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		return nil, fmt.Errorf("step: trailing text without ';': %q", rest)
	}
	return stmts, nil
}

// stringEnd returns the index of the closing quote of the string that
// opens at start.
func stringEnd(text string, start int) (int, error) {
	for i := start + 1; i < len(text); i++ {
		if text[i] != '\'' {
			continue
		}
		if i+1 < len(text) && text[i+1] == '\'' {
			i++
			continue
		}
		return i, nil
	}
	return 0, fmt.Errorf("step: unterminated string at offset %d", start)
}

func parseDataStatement(s string) (Record, error) {
	if !strings.HasPrefix(s, "#") {
		return Record{}, fmt.Errorf("step: data statement does not start with an id: %q", s)
	}
	idText, body, ok := strings.Cut(s[1:], "=")
	if !ok {
		return Record{}, fmt.Errorf("step: data statement without '=': %q", s)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil || id < 1 {
		return Record{}, fmt.Errorf("step: bad record id %q", idText)
	}
	rec, err := parseInstance(id, strings.TrimSpace(body))
	if err != nil {
		return Record{}, fmt.Errorf("step: record #%d: %w", id, err)
	}
	return rec, nil
}

// parseInstance scans a simple "KEYWORD(...)" or complex "( A(...) B(...) )"
// instance body, collecting keywords, references and strings.
func parseInstance(id int, body string) (Record, error) {
	rec := Record{ID: id, Body: body}
	keywordDepth := 0
	if strings.HasPrefix(body, "(") {
		keywordDepth = 1
	}
	depth := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\'':
			end, err := stringEnd(body, i)
			if err != nil {
				return Record{}, err
			}
			str, err := DecodeString(body[i : end+1])
			if err != nil {
				return Record{}, err
			}
			rec.Strings = append(rec.Strings, str)
			i = end
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return Record{}, fmt.Errorf("unbalanced ')'")
			}
		case c == '#':
			j := i + 1
			for j < len(body) && body[j] >= '0' && body[j] <= '9' {
				j++
			}
			ref, err := strconv.Atoi(body[i+1 : j])
			if err != nil {
				return Record{}, fmt.Errorf("bad reference at offset %d", i)
			}
			rec.Refs = append(rec.Refs, ref)
			i = j - 1
		case isKeywordStart(c) && (i == 0 || !isKeywordChar(body[i-1])) && (i == 0 || body[i-1] != '.'):
			j := i
			for j < len(body) && isKeywordChar(body[j]) {
				j++
			}
			k := j
			for k < len(body) && body[k] == ' ' {
				k++
			}
			if depth == keywordDepth && k < len(body) && body[k] == '(' {
				rec.Keywords = append(rec.Keywords, body[i:j])
			}
			i = j - 1
		}
	}
	if depth != 0 {
		return Record{}, fmt.Errorf("unbalanced parentheses")
	}
	if len(rec.Keywords) == 0 {
		return Record{}, fmt.Errorf("no entity keyword in %q", body)
	}
	return rec, nil
}

func isKeywordStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isKeywordChar(c byte) bool {
	return isKeywordStart(c) || (c >= '0' && c <= '9') || c == '-'
}
