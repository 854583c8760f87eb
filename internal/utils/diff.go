package utils

// DiffSets compares the current members of an association with the desired target
// and returns what must be added and removed. Duplicates are ignored. toAdd keeps the
// order of target and toRemove keeps the order of current.
func DiffSets[T comparable](current, target []T) (toAdd, toRemove []T) {
	currentSet := make(map[T]struct{}, len(current))
	for _, v := range current {
		currentSet[v] = struct{}{}
	}
	targetSet := make(map[T]struct{}, len(target))
	for _, v := range target {
		targetSet[v] = struct{}{}
	}

	toAdd = make([]T, 0)
	for _, v := range Unique(target) {
		if _, ok := currentSet[v]; !ok {
			toAdd = append(toAdd, v)
		}
	}

	toRemove = make([]T, 0)
	for _, v := range Unique(current) {
		if _, ok := targetSet[v]; !ok {
			toRemove = append(toRemove, v)
		}
	}

	return toAdd, toRemove
}

// Unique removes duplicate values while preserving first-seen order.
func Unique[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
