package results

import (
	"fmt"
	"strconv"
	"strings"
)

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case *Results:
		return x.String()
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// String returns token values in list notation, strings are quoted.
func (r *Results) String() string {
	return formatValue(r.Values())
}

// Dump returns token values followed by bound names, one per line, sorted by name.
// Nested results carrying names are dumped recursively.
func (r *Results) Dump() string {
	sb := &strings.Builder{}
	r.dump(sb, "")
	return sb.String()
}

func (r *Results) dump(sb *strings.Builder, indent string) {
	sb.WriteString(r.String())
	idx := r.names()
	for _, name := range sortedNames(idx) {
		sb.WriteString("\n" + indent + "- " + name + ": ")
		v := idx.get(name)
		nested, isResults := v.(*Results)
		if isResults && len(nested.names().order) > 0 {
			nested.dump(sb, indent+"  ")
		} else {
			sb.WriteString(formatValue(v))
		}
	}
}
