package placeholder

// UnusedFields returns the fields, in field order, whose identifier does not
// appear verbatim in any of the argument lists. The comparison is textual:
// "size_bytes" does not use "size".
func UnusedFields(fields []string, argLists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, args := range argLists {
		for _, arg := range args {
			seen[arg] = struct{}{}
		}
	}

	unused := make([]string, 0)
	for _, field := range fields {
		if _, ok := seen[field]; !ok {
			unused = append(unused, field)
		}
	}
	return unused
}
