package listview

import (
	"fmt"
	"strings"
)

// ViewState is the complete, serializable state of a list screen.
// Query is what the user typed; DebouncedQuery is what the list is filtered by.
type ViewState struct {
	Query          string            `json:"query"`
	DebouncedQuery string            `json:"debounced_query"`
	Filters        map[string]string `json:"filters"`
	SortField      string            `json:"sort_field,omitempty"`
	SortDirection  Direction         `json:"sort_direction"`
	Page           int               `json:"page"`
	PerPage        int               `json:"per_page"`
}

// NewViewState returns the initial state with every filter set to "all".
func NewViewState(filterFields ...string) ViewState {
	filters := make(map[string]string, len(filterFields))
	for _, f := range filterFields {
		filters[f] = FilterAll
	}
	return ViewState{
		Filters:       filters,
		SortDirection: Desc,
		Page:          1,
		PerPage:       DefaultPerPage,
	}
}

// Params derives transformer params from the state.
func (s ViewState) Params() Params {
	return Params{
		Query:         s.DebouncedQuery,
		Filters:       s.Filters,
		SortField:     s.SortField,
		SortDirection: s.SortDirection,
	}
}

// HasActiveFilters reports whether the user narrowed the list in any way.
func (s ViewState) HasActiveFilters() bool {
	if s.Query != "" {
		return true
	}
	for _, v := range s.Filters {
		if v != "" && v != FilterAll {
			return true
		}
	}
	return false
}

func (s ViewState) clone() ViewState {
	filters := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = v
	}
	s.Filters = filters
	return s
}

// Action is a discrete user intent applied to a ViewState.
type Action interface {
	apply(ViewState) ViewState
}

// SetQuery records a keystroke. The list is not refiltered until
// ApplyDebouncedQuery arrives.
type SetQuery struct{ Query string }

// ApplyDebouncedQuery makes Query effective once input pauses.
type ApplyDebouncedQuery struct{ Query string }

// SetFilter selects a value for a filterable field ("all" clears it).
type SetFilter struct{ Field, Value string }

// ToggleSort is a click on a column header.
type ToggleSort struct{ Field string }

// ClearFilters resets query, filters and sort.
type ClearFilters struct{}

// SetPage moves to another page.
type SetPage struct{ Page int }

// SetPerPage changes the page size and returns to the first page.
type SetPerPage struct{ PerPage int }

func (a SetQuery) apply(s ViewState) ViewState {
	s.Query = a.Query
	return s
}

func (a ApplyDebouncedQuery) apply(s ViewState) ViewState {
	s.DebouncedQuery = a.Query
	s.Page = 1
	return s
}

func (a SetFilter) apply(s ViewState) ViewState {
	v := a.Value
	if v == "" {
		v = FilterAll
	}
	s.Filters[a.Field] = v
	s.Page = 1
	return s
}

func (a ToggleSort) apply(s ViewState) ViewState {
	s.SortField, s.SortDirection = Toggle(s.SortField, s.SortDirection, a.Field)
	return s
}

func (ClearFilters) apply(s ViewState) ViewState {
	for k := range s.Filters {
		s.Filters[k] = FilterAll
	}
	s.Query = ""
	s.DebouncedQuery = ""
	s.SortField = ""
	s.SortDirection = Desc
	s.Page = 1
	return s
}

func (a SetPage) apply(s ViewState) ViewState {
	if a.Page < 1 {
		s.Page = 1
		return s
	}
	s.Page = a.Page
	return s
}

func (a SetPerPage) apply(s ViewState) ViewState {
	if a.PerPage < 1 {
		s.PerPage = DefaultPerPage
	} else {
		s.PerPage = a.PerPage
	}
	s.Page = 1
	return s
}

// Reduce applies a to s and returns the next state. s is left untouched.
func Reduce(s ViewState, a Action) ViewState {
	if a == nil {
		return s
	}
	return a.apply(s.clone())
}

// Message is the wire form of an Action.
type Message struct {
	Type    string `json:"type"`
	Query   string `json:"query,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"per_page,omitempty"`
}

// Action decodes the message.
func (m Message) Action() (Action, error) {
	switch strings.ToLower(strings.TrimSpace(m.Type)) {
	case "set_query":
		return SetQuery{Query: m.Query}, nil
	case "apply_query":
		return ApplyDebouncedQuery{Query: m.Query}, nil
	case "set_filter":
		if m.Field == "" {
			return nil, fmt.Errorf("set_filter requires field")
		}
		return SetFilter{Field: m.Field, Value: m.Value}, nil
	case "toggle_sort":
		if m.Field == "" {
			return nil, fmt.Errorf("toggle_sort requires field")
		}
		return ToggleSort{Field: m.Field}, nil
	case "clear_filters":
		return ClearFilters{}, nil
	case "set_page":
		return SetPage{Page: m.Page}, nil
	case "set_per_page":
		return SetPerPage{PerPage: m.PerPage}, nil
	}
	return nil, fmt.Errorf("unknown action %q", m.Type)
}
