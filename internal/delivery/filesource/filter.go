package filesource

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

func matches(it *delivery.Item, q delivery.Query) (bool, error) {
	if q.Type != "" && it.System.Type != q.Type {
		return false, nil
	}
	if len(q.Collections) > 0 && !slices.Contains(q.Collections, it.System.Collection) {
		return false, nil
	}
	for _, f := range q.Filters {
		ok, err := matchFilter(it, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchFilter(it *delivery.Item, f delivery.Filter) (bool, error) {
	values, err := fieldValues(it, f.Field)
	if err != nil {
		return false, err
	}
	switch f.Op {
	case delivery.OpEq, "":
		if len(f.Values) != 1 {
			return false, fmt.Errorf("filesource: %s[eq] takes one value", f.Field)
		}
		return len(values) == 1 && values[0] == f.Values[0], nil
	case delivery.OpIn:
		return len(values) == 1 && slices.Contains(f.Values, values[0]), nil
	case delivery.OpContains:
		for _, want := range f.Values {
			if slices.Contains(values, want) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("filesource: unsupported operator %q", f.Op)
}

// fieldValues returns the comparable values of a dotted field. Scalar
// elements yield one value; array elements yield their codenames.
func fieldValues(it *delivery.Item, field string) ([]string, error) {
	group, name, ok := strings.Cut(field, ".")
	if !ok {
		return nil, fmt.Errorf("filesource: unsupported filter field %q", field)
	}
	switch group {
	case "system":
		var v string
		switch name {
		case "id":
			v = it.System.ID
		case "codename":
			v = it.System.Codename
		case "type":
			v = it.System.Type
		case "collection":
			v = it.System.Collection
		case "language":
			v = it.System.Language
		case "name":
			v = it.System.Name
		case "workflow_step":
			v = it.System.WorkflowStep
		default:
			return nil, fmt.Errorf("filesource: unsupported filter field %q", field)
		}
		return []string{v}, nil
	case "elements":
		el, ok := it.Elements[name]
		if !ok {
			return nil, nil
		}
		switch el.Type {
		case delivery.TypeTaxonomy, delivery.TypeMultipleChoice:
			var out []string
			for _, o := range el.Options() {
				out = append(out, o.Codename)
			}
			return out, nil
		case delivery.TypeModularContent:
			return el.Codenames(), nil
		case delivery.TypeNumber:
			n, ok := el.Number()
			if !ok {
				return nil, nil
			}
			return []string{strconv.FormatFloat(n, 'f', -1, 64)}, nil
		}
		return []string{el.Text()}, nil
	}
	return nil, fmt.Errorf("filesource: unsupported filter field %q", field)
}
