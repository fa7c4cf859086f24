package core

// Upsert replaces the item sharing the same name, or appends it.
// The second return value reports whether an existing entry was replaced.
func Upsert[T any](items []T, item T, name func(T) string) ([]T, bool) {
	key := name(item)
	for i := range items {
		if name(items[i]) == key {
			items[i] = item
			return items, true
		}
	}
	return append(items, item), false
}

// MapString applies fn to s unless s is empty
func MapString(s string, fn func(string) string) string {
	if s == "" {
		return s
	}
	return fn(s)
}

// MapSlice returns a copy of items with fn applied to each element
func MapSlice(items []string, fn func(string) string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = MapString(item, fn)
	}
	return out
}

// MapValues returns a copy of m with fn applied to each value
func MapValues(m map[string]string, fn func(string) string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = MapString(v, fn)
	}
	return out
}
