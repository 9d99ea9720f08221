package sqlexec

import (
	"strings"

	"github.com/spf13/cast"
)

// Row is one record returned by the query proxy, keyed by the column aliases
// of the statement that produced it. Values arrive as loosely typed JSON.
type Row map[string]any

// Has reports whether key is present with a non-null value.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the value for key as trimmed text; null and missing values
// become the empty string.
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func (r Row) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r Row) Int(key string) int {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	return cast.ToInt(v)
}

func (r Row) Bool(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	return cast.ToBool(v)
}

// First returns the first non-empty value among keys. Proxies differ in the
// casing they use for column aliases.
func (r Row) First(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}
