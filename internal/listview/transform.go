// Package listview turns an in-memory collection into the ordered subset a
// table screen renders: search, filters and sort, plus paging helpers.
package listview

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort direction of the active column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// FilterAll disables a field filter.
const FilterAll = "all"

// ParseDirection normalizes user input; anything other than "asc" is desc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Params is the user-controlled query/filter/sort state.
type Params struct {
	Query         string            `json:"query"`
	Filters       map[string]string `json:"filters,omitempty"`
	SortField     string            `json:"sort_field,omitempty"`
	SortDirection Direction         `json:"sort_direction"`
}

// Transformer applies Params to records of type T.
// Value returns the field value of a record, or nil when the record has no such field.
type Transformer[T any] struct {
	Searchable []string
	Filterable []string
	Value      func(rec T, field string) any
	Language   language.Tag
}

// Apply returns the records matching p, in the order p asks for.
// The input slice is never modified.
func (t Transformer[T]) Apply(records []T, p Params) []T {
	query := strings.ToLower(p.Query)

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if !t.matchesSearch(rec, query) {
			continue
		}
		if !t.matchesFilters(rec, p.Filters) {
			continue
		}
		out = append(out, rec)
	}

	if p.SortField == "" {
		return out
	}

	tag := t.Language
	if tag == language.Und {
		tag = language.Spanish
	}
	col := collate.New(tag)
	desc := p.SortDirection != Asc

	sort.SliceStable(out, func(i, j int) bool {
		a := t.value(out[i], p.SortField)
		b := t.value(out[j], p.SortField)
		return compare(col, a, b, desc) < 0
	})
	return out
}

func (t Transformer[T]) value(rec T, field string) any {
	if t.Value == nil {
		return nil
	}
	return t.Value(rec, field)
}

func (t Transformer[T]) matchesSearch(rec T, query string) bool {
	if query == "" {
		return true
	}
	for _, f := range t.Searchable {
		if strings.Contains(strings.ToLower(Stringify(t.value(rec, f))), query) {
			return true
		}
	}
	return false
}

func (t Transformer[T]) matchesFilters(rec T, filters map[string]string) bool {
	for _, f := range t.Filterable {
		want, ok := filters[f]
		if !ok || want == "" || want == FilterAll {
			continue
		}
		if Stringify(t.value(rec, f)) != want {
			return false
		}
	}
	return true
}

func compare(col *collate.Collator, a, b any, desc bool) int {
	af, aNum := number(a)
	bf, bNum := number(b)
	if aNum && bNum {
		var d float64
		if desc {
			d = bf - af
		} else {
			d = af - bf
		}
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
		return 0
	}

	as, bs := sortString(a), sortString(b)
	if desc {
		return col.CompareString(bs, as)
	}
	return col.CompareString(as, bs)
}

// sortString coerces falsy values to "" the way the screens always have:
// nil, zero numbers, false and empty strings all sort as empty.
func sortString(v any) string {
	if f, ok := number(v); ok && f == 0 {
		return ""
	}
	if b, ok := v.(bool); ok && !b {
		return ""
	}
	return Stringify(v)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Stringify coerces a field value for search and filter comparison.
// nil becomes the empty string.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	if f, ok := number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Toggle returns the sort state after a click on column.
// Clicking the active column flips its direction; any other column becomes
// active in descending order.
func Toggle(activeField string, dir Direction, column string) (string, Direction) {
	if activeField == column {
		if dir == Asc {
			return column, Desc
		}
		return column, Asc
	}
	return column, Desc
}
