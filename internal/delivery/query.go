package delivery

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Operator is a Delivery API filter operator.
type Operator string

const (
	OpEq       Operator = "eq"
	OpIn       Operator = "in"
	OpContains Operator = "contains"
)

// Filter restricts a listing to items whose field matches.
// Field uses the API's dotted form, e.g. "system.codename" or "elements.url_slug".
type Filter struct {
	Field  string
	Op     Operator
	Values []string
}

// Eq filters field == value.
func Eq(field, value string) Filter {
	return Filter{Field: field, Op: OpEq, Values: []string{value}}
}

// In filters field ∈ values.
func In(field string, values ...string) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}

// Has filters items whose array field contains value.
func Has(field, value string) Filter {
	return Filter{Field: field, Op: OpContains, Values: []string{value}}
}

// ParseFilter parses the API's query string form of a filter:
// "field=value", "field[in]=a,b" or "field[contains]=value".
func ParseFilter(s string) (Filter, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return Filter{}, fmt.Errorf("delivery: filter %q: want field=value", s)
	}
	op := OpEq
	if i := strings.IndexByte(key, '['); i >= 0 {
		if !strings.HasSuffix(key, "]") || i == 0 {
			return Filter{}, fmt.Errorf("delivery: filter %q: malformed operator", s)
		}
		op = Operator(key[i+1 : len(key)-1])
		key = key[:i]
	}
	switch op {
	case OpEq, OpContains:
		return Filter{Field: key, Op: op, Values: []string{value}}, nil
	case OpIn:
		return In(key, strings.Split(value, ",")...), nil
	default:
		return Filter{}, fmt.Errorf("delivery: filter %q: unsupported operator %q", s, op)
	}
}

// Query describes one listing request against the Delivery API.
type Query struct {
	Type        string
	Filters     []Filter
	Language    string
	Collections []string
	Limit       int
	Depth       int
	Preview     bool
}

// DefaultLanguage is the language codename the API treats as the default.
const DefaultLanguage = "default"

// Values returns the query string parameters for the request.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Type != "" {
		v.Set("system.type", q.Type)
	}
	for _, f := range q.Filters {
		op := f.Op
		if op == "" {
			op = OpEq
		}
		key := f.Field + "[" + string(op) + "]"
		v.Set(key, strings.Join(f.Values, ","))
	}
	if q.Language != "" && q.Language != DefaultLanguage {
		v.Set("language", q.Language)
	}
	if len(q.Collections) > 0 {
		v.Set("system.collection[in]", strings.Join(q.Collections, ","))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Depth > 0 {
		v.Set("depth", strconv.Itoa(q.Depth))
	}
	return v
}

// Key identifies the full parameter tuple of the query. Two queries with the
// same key always return the same content.
func (q Query) Key() string {
	norm := q
	norm.Collections = append([]string(nil), q.Collections...)
	sort.Strings(norm.Collections)
	mode := "live"
	if q.Preview {
		mode = "preview"
	}
	lang := q.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	v := norm.Values()
	v.Set("language", lang)
	return mode + "?" + v.Encode()
}

// ByCodenames returns a copy of q that fetches exactly the given codenames,
// keeping the mode and language. Type, collection and limit are dropped.
func (q Query) ByCodenames(codenames []string) Query {
	sorted := append([]string(nil), codenames...)
	sort.Strings(sorted)
	return Query{
		Filters:  []Filter{In("system.codename", sorted...)},
		Language: q.Language,
		Depth:    q.Depth,
		Preview:  q.Preview,
	}
}
