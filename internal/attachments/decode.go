package attachments

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// compositeSeparator splits path and base64 name in the legacy composite token.
const compositeSeparator = "|"

// strategy tries one known shape of the files column. ok is false when the
// value is not in that shape and the next strategy should run.
type strategy func(v any) (refs []Ref, ok bool)

// strategies lists every accepted shape, in the order they are tried.
var strategies = []strategy{
	fromObjectList,
	fromStringList,
	fromMixedList,
	fromJSONText,
	fromCompositeTokens,
	fromDelimitedText,
	fromPlainText,
}

// Decode reads a files column value stored as text. It never fails: input in
// no recognised shape degrades to a single path, and blank input to an empty
// list.
func Decode(raw string) []Ref {
	return DecodeValue(raw)
}

// DecodeValue is Decode for values that may already be structured, such as a
// jsonb column scanned into any, a []string, or a []Ref.
func DecodeValue(v any) []Ref {
	v = normalize(v)
	if v == nil {
		return []Ref{}
	}
	for _, try := range strategies {
		if refs, ok := try(v); ok {
			return refs
		}
	}
	return []Ref{}
}

// normalize folds the concrete types callers pass into the shapes the
// strategies understand: string, []any, map[string]any or []Ref.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalize(string(t))
	case *string:
		if t == nil {
			return nil
		}
		return normalize(*t)
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return t
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	case []map[string]any:
		out := make([]any, 0, len(t))
		for _, m := range t {
			out = append(out, m)
		}
		return out
	case map[string]any:
		return []any{t}
	case Ref:
		return []Ref{t}
	default:
		return v
	}
}

func fromObjectList(v any) ([]Ref, bool) {
	switch t := v.(type) {
	case []Ref:
		out := make([]Ref, 0, len(t))
		for _, r := range t {
			if r.Name == "" {
				r.Name = Basename(r.Path)
			}
			out = append(out, r)
		}
		return out, true
	case []any:
		out := make([]Ref, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, refFromObject(m))
		}
		return out, true
	}
	return nil, false
}

func fromStringList(v any) ([]Ref, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Ref, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, refFromPath(s))
	}
	return out, true
}

// fromMixedList accepts a list holding both objects and bare strings.
// Elements of any other type are skipped.
func fromMixedList(v any) ([]Ref, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Ref, 0, len(list))
	for _, item := range list {
		switch e := item.(type) {
		case map[string]any:
			out = append(out, refFromObject(e))
		case string:
			if strings.TrimSpace(e) != "" {
				out = append(out, refFromPath(e))
			}
		}
	}
	return out, true
}

func fromJSONText(v any) ([]Ref, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if !looksLikeJSON(s) {
		return nil, false
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, false
	}
	parsed = normalize(parsed)
	if parsed == nil {
		return []Ref{}, true
	}
	for _, try := range []strategy{fromObjectList, fromStringList, fromMixedList} {
		if refs, ok := try(parsed); ok {
			return refs, true
		}
	}
	return nil, false
}

func looksLikeJSON(s string) bool {
	return (strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")) ||
		(strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"))
}

// fromCompositeTokens reads "path|base64(name)" tokens joined by commas.
// It must run before fromDelimitedText, which would keep the "|" suffix as
// part of the path.
func fromCompositeTokens(v any) ([]Ref, bool) {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, compositeSeparator) {
		return nil, false
	}
	tokens := splitTokens(s)
	out := make([]Ref, 0, len(tokens))
	for _, tok := range tokens {
		path, encoded, found := strings.Cut(tok, compositeSeparator)
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if !found {
			out = append(out, refFromPath(path))
			continue
		}
		name, ok := decodeName(strings.TrimSpace(encoded))
		if !ok {
			name = Basename(path)
		}
		out = append(out, Ref{Name: name, Path: path})
	}
	return out, true
}

func fromDelimitedText(v any) ([]Ref, bool) {
	s, ok := v.(string)
	if !ok || !strings.ContainsAny(s, ",\n") {
		return nil, false
	}
	tokens := splitTokens(s)
	out := make([]Ref, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, refFromPath(tok))
	}
	return out, true
}

func fromPlainText(v any) ([]Ref, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return []Ref{}, true
	}
	return []Ref{refFromPath(s)}, true
}

func refFromPath(path string) Ref {
	path = strings.TrimSpace(path)
	return Ref{Name: Basename(path), Path: path}
}

func refFromObject(m map[string]any) Ref {
	r := Ref{
		Name: stringField(m, "name"),
		Path: stringField(m, "path"),
		URL:  stringField(m, "url"),
	}
	if r.Name == "" {
		r.Name = Basename(r.Path)
	}
	return r
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func splitTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func decodeName(encoded string) (string, bool) {
	if encoded == "" {
		return "", false
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		b, err := enc.DecodeString(encoded)
		if err != nil {
			continue
		}
		if len(b) == 0 || !utf8.Valid(b) {
			return "", false
		}
		return string(b), true
	}
	return "", false
}
