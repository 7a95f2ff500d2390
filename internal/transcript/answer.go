package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"docq-cli/internal/util"
)

// member is one key/value pair of a JSON object, in encounter order.
// Object values decode as []member and arrays as []any, so ordering
// survives at every nesting level where a plain map would lose it.
type member struct {
	key   string
	value any
}

// FormatAnswer reinterprets a final answer as a structured JSON object
// and renders it as markdown sections. Anything that is not a JSON
// object (arrays, scalars, plain prose, broken JSON) passes through
// trimmed but otherwise unchanged.
func FormatAnswer(raw string) string {
	trimmed := strings.TrimSpace(raw)
	members, ok := parseObject(trimmed)
	if !ok || len(members) == 0 {
		return trimmed
	}

	consumed := make([]bool, len(members))
	var sections []string

	for i, m := range members {
		if m.key != "status" {
			continue
		}
		text := fmt.Sprintf("%v", m.value)
		glyph := "⚠️"
		if strings.EqualFold(text, "success") {
			glyph = "✅"
		}
		sections = append(sections, fmt.Sprintf("## %s %s", glyph, util.Capitalize(text)))
		consumed[i] = true
		break
	}

	for i, m := range members {
		if consumed[i] || m.key != "summary" {
			continue
		}
		sections = append(sections, fmt.Sprintf("### Summary\n\n%v", m.value))
		consumed[i] = true
		break
	}

	for i, m := range members {
		if consumed[i] {
			continue
		}
		lower := strings.ToLower(m.key)
		if !strings.Contains(lower, "generated") && !strings.Contains(lower, "files") {
			continue
		}
		items, ok := m.value.([]any)
		if !ok {
			continue
		}
		sections = append(sections, fileListSection(m.key, items))
		consumed[i] = true
	}

	for i, m := range members {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		switch value := m.value.(type) {
		case []member:
			sections = append(sections, mappingSection(m.key, value))
		case []any:
			sections = append(sections, listSection(m.key, value))
		default:
			sections = append(sections, fmt.Sprintf("**%s:** %v", util.HumanizeKey(m.key), value))
		}
	}

	return strings.Join(sections, "\n\n")
}

func fileListSection(key string, items []any) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if path, ok := item.(string); ok {
			lines = append(lines, fmt.Sprintf("- 📄 `%s`", util.LastPathSegment(path)))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %v", item))
	}
	return fmt.Sprintf("### %s\n\n%s", util.HumanizeKey(key), strings.Join(lines, "\n"))
}

func listSection(key string, items []any) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %v", item))
	}
	return fmt.Sprintf("### %s\n\n%s", util.HumanizeKey(key), strings.Join(lines, "\n"))
}

func mappingSection(key string, nested []member) string {
	lines := make([]string, 0, len(nested))
	for _, m := range nested {
		lines = append(lines, fmt.Sprintf("- **%s:** %v", util.HumanizeKey(m.key), m.value))
	}
	return fmt.Sprintf("### %s\n\n%s", util.HumanizeKey(key), strings.Join(lines, "\n"))
}

// parseObject decodes data as a complete JSON object and reports
// whether it was one. Token-stream decoding keeps key encounter order.
func parseObject(data string) ([]member, bool) {
	dec := json.NewDecoder(strings.NewReader(data))
	value, err := parseValue(dec)
	if err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	members, ok := value.([]member)
	return members, ok
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		members := []member{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T", keyTok)
			}
			value, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			members = append(members, member{key: key, value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return members, nil
	case '[':
		items := []any{}
		for dec.More() {
			value, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
