// Package jsoncoerce extracts a JSON object or array out of noisy language
// model output: fenced code blocks, leading/trailing prose, and stringly
// null sentinels are all tolerated rather than treated as errors.
//
// This is the one component in the pipeline intentionally built on the
// standard library alone — see DESIGN.md for why no third-party JSON
// library fits better here.
package jsoncoerce

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// nullSentinels are stringly-null tokens models commonly emit in place of
// a real JSON null.
var nullSentinels = map[string]struct{}{
	"null": {}, "none": {}, "nil": {}, "": {},
}

// IsNullSentinel reports whether s, case-insensitively trimmed, is one of
// the stringly-null tokens that should be treated as absent.
func IsNullSentinel(s string) bool {
	_, ok := nullSentinels[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Object attempts to coerce raw model output into a JSON object, trying in
// order: the full cleaned text; the substring from the first '{' to the
// last '}'; the substring balanced by brace counting starting at the first
// '{'. Returns (nil, false) if nothing parses.
func Object(raw string) (map[string]any, bool) {
	cleaned := stripFence(raw)

	if obj, ok := tryObject(cleaned); ok {
		return obj, true
	}

	if sub, ok := outerSpan(cleaned, '{', '}'); ok {
		if obj, ok := tryObject(sub); ok {
			return obj, true
		}
	}

	if sub, ok := balancedSpan(cleaned, '{', '}'); ok {
		if obj, ok := tryObject(sub); ok {
			return obj, true
		}
	}

	return nil, false
}

// Array attempts to coerce raw model output into a JSON array, using the
// same fallback chain as Object but scanning for '[' / ']'.
func Array(raw string) ([]any, bool) {
	cleaned := stripFence(raw)

	if arr, ok := tryArray(cleaned); ok {
		return arr, true
	}

	if sub, ok := outerSpan(cleaned, '[', ']'); ok {
		if arr, ok := tryArray(sub); ok {
			return arr, true
		}
	}

	if sub, ok := balancedSpan(cleaned, '[', ']'); ok {
		if arr, ok := tryArray(sub); ok {
			return arr, true
		}
	}

	return nil, false
}

// StringField extracts a string value for key from raw model output,
// coercing to an object first. Stringly-null sentinels are reported absent.
func StringField(raw, key string) (string, bool) {
	obj, ok := Object(raw)
	if !ok {
		return "", false
	}
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if IsNullSentinel(s) {
		return "", false
	}
	return s, true
}

// StringSliceField extracts a []string for key, accepting either
// {key: [...]} or a bare top-level array. When key is empty only the bare
// array form is read; when key is set, a bare array is accepted if the
// output does not parse as an object.
func StringSliceField(raw, key string) ([]string, bool) {
	var rawSlice []any
	if key == "" {
		arr, ok := Array(raw)
		if !ok {
			return nil, false
		}
		rawSlice = arr
	} else {
		obj, ok := Object(raw)
		if !ok {
			// Some models emit a bare array even when an object with a key
			// was requested; tolerate that shape too.
			arr, ok := Array(raw)
			if !ok {
				return nil, false
			}
			rawSlice = arr
		} else {
			v, ok := obj[key]
			if !ok {
				return nil, false
			}
			slice, ok := v.([]any)
			if !ok {
				return nil, false
			}
			rawSlice = slice
		}
	}

	out := make([]string, 0, len(rawSlice))
	for _, v := range rawSlice {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || IsNullSentinel(s) {
			continue
		}
		out = append(out, s)
	}
	return out, true
}

func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

func tryObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func tryArray(s string) ([]any, bool) {
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, false
	}
	return arr, true
}

// outerSpan returns the substring from the first occurrence of open to the
// last occurrence of close, inclusive.
func outerSpan(s string, open, close byte) (string, bool) {
	first := strings.IndexByte(s, open)
	last := strings.LastIndexByte(s, close)
	if first < 0 || last < 0 || last < first {
		return "", false
	}
	return s[first : last+1], true
}

// balancedSpan returns the substring starting at the first occurrence of
// open and ending at the position where nested open/close pairs balance
// back to zero, handling JSON string literals so braces inside quoted
// strings are not mistaken for structural ones.
func balancedSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
