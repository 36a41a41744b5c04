// Package toon implements the TOON encoding, a token-efficient text format
// for JSON-like data. Uniform arrays of flat objects collapse into a tabular
// form with a single header row; everything else renders as indented
// key/value lines. Typical payloads shrink 30-60% compared to JSON.
package toon

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const indentStep = "  "

// Encode renders a JSON-serializable value as a TOON document
func Encode(value any) (string, error) {
	normalized, err := normalize(value)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	switch v := normalized.(type) {
	case map[string]any:
		encodeMapBody(&builder, v, 0)
	case []any:
		encodeArray(&builder, "", v, 0)
	default:
		builder.WriteString(renderScalar(v))
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n"), nil
}

// normalize converts any JSON-serializable value into the canonical
// map[string]any / []any / scalar shape
func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func encodeMapBody(builder *strings.Builder, m map[string]any, depth int) {
	for _, key := range sortedKeys(m) {
		encodeEntry(builder, key, m[key], depth)
	}
}

func encodeEntry(builder *strings.Builder, key string, value any, depth int) {
	indent := strings.Repeat(indentStep, depth)
	switch v := value.(type) {
	case map[string]any:
		builder.WriteString(indent + renderKey(key) + ":\n")
		encodeMapBody(builder, v, depth+1)
	case []any:
		encodeArray(builder, key, v, depth)
	default:
		builder.WriteString(indent + renderKey(key) + ": " + renderScalar(v) + "\n")
	}
}

// encodeArray picks the densest representation the array supports:
// inline for scalars, tabular for uniform flat objects, list otherwise.
func encodeArray(builder *strings.Builder, key string, items []any, depth int) {
	indent := strings.Repeat(indentStep, depth)
	prefix := indent
	if key != "" {
		prefix += renderKey(key)
	}
	count := strconv.Itoa(len(items))

	if allScalars(items) {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, renderCell(item))
		}
		line := prefix + "[" + count + "]:"
		if len(items) > 0 {
			line += " " + strings.Join(parts, ",")
		}
		builder.WriteString(line + "\n")
		return
	}

	if fields := tabularFields(items); fields != nil {
		builder.WriteString(prefix + "[" + count + "]{" + strings.Join(fields, ",") + "}:\n")
		rowIndent := strings.Repeat(indentStep, depth+1)
		for _, item := range items {
			row := item.(map[string]any)
			cells := make([]string, 0, len(fields))
			for _, field := range fields {
				cells = append(cells, renderCell(row[field]))
			}
			builder.WriteString(rowIndent + strings.Join(cells, ",") + "\n")
		}
		return
	}

	builder.WriteString(prefix + "[" + count + "]:\n")
	itemIndent := strings.Repeat(indentStep, depth+1)
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			builder.WriteString(itemIndent + "-\n")
			encodeMapBody(builder, v, depth+2)
		case []any:
			builder.WriteString(itemIndent + "-\n")
			encodeArray(builder, "", v, depth+2)
		default:
			builder.WriteString(itemIndent + "- " + renderScalar(v) + "\n")
		}
	}
}

// tabularFields returns the shared sorted key set if every item is a flat
// object over the same keys with scalar values, nil otherwise
func tabularFields(items []any) []string {
	if len(items) == 0 {
		return nil
	}
	var fields []string
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		keys := sortedKeys(obj)
		for _, key := range keys {
			// Field names are emitted unquoted in the header
			if renderKey(key) != key {
				return nil
			}
			switch obj[key].(type) {
			case map[string]any, []any:
				return nil
			}
		}
		if i == 0 {
			fields = keys
			continue
		}
		if len(keys) != len(fields) {
			return nil
		}
		for j := range keys {
			if keys[j] != fields[j] {
				return nil
			}
		}
	}
	return fields
}

func allScalars(items []any) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func renderKey(key string) string {
	if key == "" || strings.ContainsAny(key, ":,[]{}\"\n ") {
		return strconv.Quote(key)
	}
	return key
}

// renderScalar renders a scalar for a key: value position
func renderScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case string:
		if needsQuoting(v) {
			return strconv.Quote(v)
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renderCell renders a scalar for a comma-separated position, where commas
// force quoting
func renderCell(value any) string {
	if s, ok := value.(string); ok {
		if needsQuoting(s) || strings.Contains(s, ",") {
			return strconv.Quote(s)
		}
		return s
	}
	return renderScalar(value)
}

func needsQuoting(s string) bool {
	if s == "" || s == "null" || s == "true" || s == "false" {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if strings.ContainsAny(s, ":\"\n") {
		return true
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		return true
	}
	return s != strings.TrimSpace(s)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Stats compares the JSON and TOON renderings of a value. Token counts are
// a chars/4 approximation, floored at 1 for non-empty documents.
type Stats struct {
	JSONLength     int     `json:"json_length"`
	ToonLength     int     `json:"toon_length"`
	JSONTokens     int     `json:"json_tokens"`
	ToonTokens     int     `json:"toon_tokens"`
	SavingsPercent float64 `json:"savings_percent"`
}

// Analyze computes size statistics for encoding value with TOON
func Analyze(value any) (Stats, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Stats{}, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	encoded, err := Encode(value)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		JSONLength: len(raw),
		ToonLength: len(encoded),
		JSONTokens: approxTokens(len(raw)),
		ToonTokens: approxTokens(len(encoded)),
	}
	if stats.JSONLength > 0 {
		savings := float64(stats.JSONLength-stats.ToonLength) / float64(stats.JSONLength) * 100
		if savings < 0 {
			savings = 0
		}
		stats.SavingsPercent = math.Round(savings*10) / 10
	}
	return stats, nil
}

func approxTokens(chars int) int {
	if chars == 0 {
		return 0
	}
	tokens := (chars + 3) / 4
	if tokens < 1 {
		return 1
	}
	return tokens
}
