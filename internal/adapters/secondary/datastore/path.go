package datastore

// getAtPath walks doc along path and returns the value found there; the
// bool is false when a segment is missing or a non-map is met on the way.
func getAtPath(doc map[string]any, path []string) (any, bool) {
	cur := any(doc)
	for _, k := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[k]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func setAtPath(doc map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	m := doc
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func deleteAtPath(doc map[string]any, path []string) {
	if len(path) == 0 {
		return
	}
	m := doc
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			return
		}
		m = next
	}
	delete(m, path[len(path)-1])
}
