package input

import (
	"strings"

	"palantir/internal/domain"
)

// ParseFreeText splits raw user input on commas, whitespace and newlines
// into candidate search keys, trimmed and deduplicated (first occurrence
// wins, original casing preserved).
func ParseFreeText(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	return dedup(fields)
}

// ParseCSV extracts search keys from CSV content. The first line counts as a
// header row when it contains "sku" (case-insensitive); keys are then taken
// from the sku-ish column. Without a recognizable header every
// comma-separated token on every line is a candidate key.
func ParseCSV(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	firstLine := lines[0]
	hasHeaders := strings.Contains(strings.ToLower(firstLine), "sku")

	var keys []string
	if hasHeaders {
		headers := strings.Split(firstLine, ",")
		skuColumn := -1
		for i, h := range headers {
			h = strings.ToLower(strings.TrimSpace(h))
			if h == "sku" || strings.Contains(h, "sku") {
				skuColumn = i
				break
			}
		}

		if skuColumn == -1 {
			keys = allTokens(lines)
		} else {
			for _, line := range lines[1:] {
				values := strings.Split(line, ",")
				if skuColumn < len(values) {
					if v := strings.TrimSpace(values[skuColumn]); v != "" {
						keys = append(keys, v)
					}
				}
			}
		}
	} else {
		keys = allTokens(lines)
	}

	return dedup(keys)
}

func allTokens(lines []string) []string {
	var keys []string
	for _, line := range lines {
		for _, v := range strings.Split(line, ",") {
			if v = strings.TrimSpace(v); v != "" {
				keys = append(keys, v)
			}
		}
	}
	return keys
}

// Dedup removes duplicates from an already-parsed key list, keeping the
// first occurrence of each key. Duplicates are detected on the normalized
// form, so "A" and " a" collapse to one key, matching how the matcher
// compares them later.
func Dedup(keys []string) []string {
	return dedup(keys)
}

func dedup(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		norm := domain.NormalizeKey(k)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, k)
	}
	return out
}
