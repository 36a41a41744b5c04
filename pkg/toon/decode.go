package toon

import (
	"fmt"
	"strconv"
	"strings"
)

// Decode parses a TOON document back into maps, slices, and scalars.
// Numbers decode as float64, matching encoding/json.
func Decode(document string) (any, error) {
	lines, err := splitLines(document)
	if err != nil {
		return nil, err
	}
	// An empty object encodes to an empty document
	if len(lines) == 0 {
		return map[string]any{}, nil
	}

	parser := &parser{lines: lines}

	// Array documents start with a bare [N] header, scalar documents are a
	// single line without any entry structure.
	first := lines[0].text
	if strings.HasPrefix(first, "[") {
		value, err := parser.parseArrayHeader(first[1:], 0)
		if err != nil {
			return nil, err
		}
		return value, parser.expectEnd()
	}
	if len(lines) == 1 && !looksLikeEntry(first) {
		return parseScalarToken(first)
	}

	value, err := parser.parseMapBody(0)
	if err != nil {
		return nil, err
	}
	return value, parser.expectEnd()
}

type parsedLine struct {
	depth int
	text  string
}

type parser struct {
	lines []parsedLine
	pos   int
}

func splitLines(document string) ([]parsedLine, error) {
	var lines []parsedLine
	for n, raw := range strings.Split(document, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		trimmed := strings.TrimLeft(raw, " ")
		spaces := len(raw) - len(trimmed)
		if spaces%len(indentStep) != 0 {
			return nil, fmt.Errorf("line %d: indentation is not a multiple of %d spaces", n+1, len(indentStep))
		}
		lines = append(lines, parsedLine{depth: spaces / len(indentStep), text: trimmed})
	}
	return lines, nil
}

func looksLikeEntry(text string) bool {
	_, _, err := splitKey(text)
	return err == nil
}

func (p *parser) peek() (parsedLine, bool) {
	if p.pos >= len(p.lines) {
		return parsedLine{}, false
	}
	return p.lines[p.pos], true
}

func (p *parser) next() parsedLine {
	line := p.lines[p.pos]
	p.pos++
	return line
}

func (p *parser) expectEnd() error {
	if line, ok := p.peek(); ok {
		return fmt.Errorf("unexpected content %q after document end", line.text)
	}
	return nil
}

// parseMapBody consumes consecutive entries at the given depth
func (p *parser) parseMapBody(depth int) (map[string]any, error) {
	result := make(map[string]any)
	for {
		line, ok := p.peek()
		if !ok || line.depth != depth {
			return result, nil
		}
		p.next()

		key, rest, err := splitKey(line.text)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", line.text, err)
		}

		value, err := p.parseEntryValue(rest, depth)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		result[key] = value
	}
}

// parseEntryValue interprets what follows a key: an array header, a nested
// block, or an inline scalar
func (p *parser) parseEntryValue(rest string, depth int) (any, error) {
	if strings.HasPrefix(rest, "[") {
		return p.parseArrayHeader(rest[1:], depth)
	}
	if !strings.HasPrefix(rest, ":") {
		return nil, fmt.Errorf("expected ':' after key, got %q", rest)
	}
	inline := strings.TrimSpace(rest[1:])
	if inline != "" {
		return parseScalarToken(inline)
	}
	// Nested block, or an empty map when nothing deeper follows
	if line, ok := p.peek(); ok && line.depth > depth {
		return p.parseMapBody(depth + 1)
	}
	return map[string]any{}, nil
}

// parseArrayHeader parses the remainder of an [N]... header: "]": inline or
// block list, "]{fields}:": tabular rows
func (p *parser) parseArrayHeader(rest string, depth int) (any, error) {
	closing := strings.Index(rest, "]")
	if closing < 0 {
		return nil, fmt.Errorf("unterminated array length")
	}
	count, err := strconv.Atoi(rest[:closing])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("invalid array length %q", rest[:closing])
	}
	rest = rest[closing+1:]

	switch {
	case strings.HasPrefix(rest, "{"):
		return p.parseTabular(rest[1:], count, depth)
	case strings.HasPrefix(rest, ":"):
		inline := strings.TrimSpace(rest[1:])
		if inline != "" {
			return parseInlineList(inline, count)
		}
		if count == 0 {
			return []any{}, nil
		}
		return p.parseListItems(count, depth+1)
	default:
		return nil, fmt.Errorf("malformed array header near %q", rest)
	}
}

func (p *parser) parseTabular(rest string, count, depth int) (any, error) {
	closing := strings.Index(rest, "}")
	if closing < 0 {
		return nil, fmt.Errorf("unterminated field list")
	}
	fields := strings.Split(rest[:closing], ",")
	if !strings.HasPrefix(rest[closing+1:], ":") {
		return nil, fmt.Errorf("expected ':' after field list")
	}

	items := make([]any, 0, count)
	for range count {
		line, ok := p.peek()
		if !ok || line.depth != depth+1 {
			return nil, fmt.Errorf("expected %d rows, got %d", count, len(items))
		}
		p.next()

		cells, err := splitCells(line.text)
		if err != nil {
			return nil, err
		}
		if len(cells) != len(fields) {
			return nil, fmt.Errorf("row has %d cells, header has %d fields", len(cells), len(fields))
		}
		row := make(map[string]any, len(fields))
		for i, field := range fields {
			value, err := parseScalarToken(cells[i])
			if err != nil {
				return nil, err
			}
			row[field] = value
		}
		items = append(items, row)
	}
	return items, nil
}

func (p *parser) parseListItems(count, depth int) (any, error) {
	items := make([]any, 0, count)
	for range count {
		line, ok := p.peek()
		if !ok || line.depth != depth || !strings.HasPrefix(line.text, "-") {
			return nil, fmt.Errorf("expected %d list items, got %d", count, len(items))
		}
		p.next()

		inline := strings.TrimSpace(strings.TrimPrefix(line.text, "-"))
		if inline != "" {
			value, err := parseScalarToken(inline)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
			continue
		}

		// Bare hyphen: the item body follows one level deeper
		child, ok := p.peek()
		if !ok || child.depth != depth+1 {
			items = append(items, map[string]any{})
			continue
		}
		if strings.HasPrefix(child.text, "[") {
			p.next()
			value, err := p.parseArrayHeader(child.text[1:], depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
			continue
		}
		value, err := p.parseMapBody(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	return items, nil
}

func parseInlineList(inline string, count int) (any, error) {
	cells, err := splitCells(inline)
	if err != nil {
		return nil, err
	}
	if len(cells) != count {
		return nil, fmt.Errorf("inline list has %d items, header says %d", len(cells), count)
	}
	items := make([]any, 0, len(cells))
	for _, cell := range cells {
		value, err := parseScalarToken(cell)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	return items, nil
}

// splitKey splits an entry line into its key and the remainder starting at
// ':' or '['. Quoted keys may contain any character.
func splitKey(text string) (string, string, error) {
	if strings.HasPrefix(text, `"`) {
		end, err := quotedEnd(text)
		if err != nil {
			return "", "", err
		}
		key, err := strconv.Unquote(text[:end])
		if err != nil {
			return "", "", err
		}
		return key, text[end:], nil
	}
	idx := strings.IndexAny(text, ":[")
	if idx < 0 {
		return "", "", fmt.Errorf("missing ':' separator")
	}
	return text[:idx], text[idx:], nil
}

// quotedEnd returns the index just past the closing quote of a leading
// double-quoted string
func quotedEnd(text string) (int, error) {
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated quoted string")
}

// splitCells splits a comma-separated row honoring quoted cells
func splitCells(text string) ([]string, error) {
	var cells []string
	for {
		text = strings.TrimLeft(text, " ")
		if strings.HasPrefix(text, `"`) {
			end, err := quotedEnd(text)
			if err != nil {
				return nil, err
			}
			cells = append(cells, text[:end])
			text = strings.TrimLeft(text[end:], " ")
			if text == "" {
				return cells, nil
			}
			if !strings.HasPrefix(text, ",") {
				return nil, fmt.Errorf("expected ',' after quoted cell")
			}
			text = text[1:]
			continue
		}
		idx := strings.Index(text, ",")
		if idx < 0 {
			cells = append(cells, strings.TrimSpace(text))
			return cells, nil
		}
		cells = append(cells, strings.TrimSpace(text[:idx]))
		text = text[idx+1:]
	}
}

func parseScalarToken(token string) (any, error) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, `"`) {
		return strconv.Unquote(token)
	}
	switch token {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if number, err := strconv.ParseFloat(token, 64); err == nil {
		return number, nil
	}
	return token, nil
}
