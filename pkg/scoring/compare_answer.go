package scoring

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// confidenceThreshold is the minimum externally-supplied confidence score for
// speaking and drawing answers to count as correct.
const confidenceThreshold = 0.7

type comparator func(correct, student any) bool

// comparators is the closed mapping from question kind to its correctness
// rule. No default branch: a kind absent here is never correct.
var comparators = map[Kind]comparator{
	KindTrueFalse:      compareExact,
	KindMultipleChoice: compareExact,
	KindInput:          compareInput,
	KindFillBlanks:     compareFillBlanks,
	KindMatching:       pairComparator("left", "right"),
	KindWordMatching:   pairComparator("word", "definition"),
	KindSpeaking:       compareConfidence,
	KindDrawing:        compareConfidence,
}

// compareExact checks raw equality of the selected value against the correct
// value, without normalization.
func compareExact(correct, student any) bool {
	return canonical(correct) == canonical(student)
}

// compareInput accepts an exact normalized match, or the correct answer as a
// substring of the student answer. Single-character correct answers must be
// anchored at the start or end so an embedded letter does not match.
// A list-valued correct answer is satisfied by any of its elements.
func compareInput(correct, student any) bool {
	got := normalize(canonical(student))

	candidates, isList := toList(correct)
	if !isList {
		candidates = []any{correct}
	}

	for _, c := range candidates {
		want := normalize(canonical(c))
		if got == want {
			return true
		}
		if want == "" {
			continue
		}
		if utf8.RuneCountInString(want) == 1 {
			if strings.HasPrefix(got, want) || strings.HasSuffix(got, want) {
				return true
			}
			continue
		}
		if strings.Contains(got, want) {
			return true
		}
	}
	return false
}

// compareFillBlanks matches lists positionally; anything else is compared as
// normalized scalars.
func compareFillBlanks(correct, student any) bool {
	cl, cok := toList(correct)
	sl, sok := toList(student)
	if cok && sok {
		if len(cl) != len(sl) {
			return false
		}
		for i := range cl {
			if normalize(canonical(cl[i])) != normalize(canonical(sl[i])) {
				return false
			}
		}
		return true
	}
	return normalize(canonical(correct)) == normalize(canonical(student))
}

// pairComparator builds the rule for matching-style questions: both sides
// must be equal-length lists whose positional pairs agree on both sub-fields.
func pairComparator(first, second string) comparator {
	return func(correct, student any) bool {
		cl, cok := toList(correct)
		sl, sok := toList(student)
		if !cok || !sok || len(cl) != len(sl) {
			return false
		}
		for i := range cl {
			ca, cb, ok := pairFields(cl[i], first, second)
			if !ok {
				return false
			}
			sa, sb, ok := pairFields(sl[i], first, second)
			if !ok {
				return false
			}
			if normalize(ca) != normalize(sa) || normalize(cb) != normalize(sb) {
				return false
			}
		}
		return true
	}
}

// compareConfidence derives correctness from the confidence score attached to
// the correct-answer object by the external speech/drawing evaluator.
func compareConfidence(correct, _ any) bool {
	m, ok := toStringMap(correct)
	if !ok {
		return false
	}
	score, ok := toFloat(m["score"])
	return ok && score >= confidenceThreshold
}

// ── answer shape coercion ───────────────────────────────────────────────────

// canonical renders a scalar answer value as a comparison string.
func canonical(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// normalize lowercases and trims a value before comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// toList coerces any slice shape to []any.
func toList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toStringMap coerces map shapes to map[string]any.
func toStringMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out, true
	case map[string]float64:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// pairFields extracts both sub-fields of a matching pair.
func pairFields(v any, first, second string) (string, string, bool) {
	m, ok := toStringMap(v)
	if !ok {
		return "", "", false
	}
	a, aok := m[first]
	b, bok := m[second]
	if !aok || !bok {
		return "", "", false
	}
	return canonical(a), canonical(b), true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
