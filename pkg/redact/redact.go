// Package redact scrubs secret-shaped substrings out of values before they
// reach a structured log sink. Submitted scripts route through fetch and
// callMCPTool with arbitrary upstream credentials in scope; anything they
// print to console, or any error text the orchestrator surfaces, can carry
// those credentials back out through the gateway's own logs.
package redact

import (
	"reflect"
	"regexp"
)

// Pattern is one secret-shaped regular expression and its replacement.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// Redactor walks arbitrary Go values and replaces matched substrings.
type Redactor struct {
	patterns []Pattern
}

// New builds a Redactor with the default secret patterns.
func New() *Redactor {
	return &Redactor{patterns: defaultPatterns()}
}

// AddPattern registers an additional pattern, e.g. for a deployment's own
// internal token format.
func (r *Redactor) AddPattern(name, pattern, replacement string) error {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, Pattern{Name: name, Regex: regex, Replacement: replacement})
	return nil
}

// Value recursively sanitizes data, replacing detected secrets in every
// string it finds, including inside maps, slices, and structs.
func (r *Redactor) Value(data any) any {
	if data == nil {
		return nil
	}
	return r.value(reflect.ValueOf(data)).Interface()
}

// String sanitizes a single string against every registered pattern.
func (r *Redactor) String(s string) string {
	for _, p := range r.patterns {
		s = p.Regex.ReplaceAllString(s, p.Replacement)
	}
	return s
}

// Strings sanitizes a slice of strings, e.g. captured stdout/stderr lines.
func (r *Redactor) Strings(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = r.String(l)
	}
	return out
}

func (r *Redactor) value(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.String:
		return reflect.ValueOf(r.String(v.String()))
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			out.SetMapIndex(r.value(key), r.value(v.MapIndex(key)))
		}
		return out
	case reflect.Slice, reflect.Array:
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(r.value(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.CanInterface() && out.Field(i).CanSet() {
				out.Field(i).Set(r.value(field))
			}
		}
		return out
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		elem := r.value(v.Elem())
		ptr := reflect.New(elem.Type())
		ptr.Elem().Set(elem)
		return ptr
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return r.value(v.Elem())
	default:
		return v
	}
}

func defaultPatterns() []Pattern {
	return []Pattern{
		{"GitHub token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`), "[REDACTED-GITHUB-TOKEN]"},
		{"OpenAI API key", regexp.MustCompile(`sk-[A-Za-z0-9]{48}`), "[REDACTED-OPENAI-KEY]"},
		{"Anthropic API key", regexp.MustCompile(`sk-ant-[A-Za-z0-9\-_]{95}`), "[REDACTED-ANTHROPIC-KEY]"},
		{"Slack token", regexp.MustCompile(`xox[boa]p?-[0-9]+-[0-9A-Za-z-]+`), "[REDACTED-SLACK-TOKEN]"},
		{"AWS access key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "[REDACTED-AWS-ACCESS-KEY]"},
		{"Google API key", regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`), "[REDACTED-GOOGLE-API-KEY]"},
		{"JWT", regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`), "[REDACTED-JWT]"},
		{"Bearer token", regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-_.]+`), "Bearer [REDACTED-TOKEN]"},
		{"credential URL", regexp.MustCompile(`://[^\s:@/]+:[^\s@/]+@`), "://[USER]:[REDACTED]@"},
		{"SSH private key", regexp.MustCompile(`-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]+?-----END [A-Z ]+PRIVATE KEY-----`), "[REDACTED-SSH-PRIVATE-KEY]"},
	}
}
