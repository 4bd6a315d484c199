package monomem

import (
	"reflect"
	"sync"
)

// ArenaSafe is implemented by types that may live in chunk memory although
// they hold pointers. Chunk memory is not scanned by the garbage collector, so
// every pointer of such a value must reference memory of the same allocator
// or memory kept reachable elsewhere.
type ArenaSafe interface {
	ArenaSafe()
}

var (
	arenaSafeType = reflect.TypeFor[ArenaSafe]()
	pointerFree   sync.Map // reflect.Type -> bool
)

// checkPointerFree panics if values of T may not be stored in chunk memory.
func checkPointerFree[T any]() {
	t := reflect.TypeFor[T]()
	free, ok := pointerFree.Load(t)
	if !ok {
		free, _ = pointerFree.LoadOrStore(t, !containsPointers(t, map[reflect.Type]bool{}))
	}
	if !free.(bool) {
		violate(ErrGoPointers, "%s; implement ArenaSafe or use String", t)
	}
}

// containsPointers reports whether t holds Go pointers outside of ArenaSafe
// parts.
func containsPointers(t reflect.Type, visited map[reflect.Type]bool) bool {
	if visited[t] {
		return false
	}
	visited[t] = true

	if t.Kind() != reflect.Interface &&
		(t.Implements(arenaSafeType) || reflect.PointerTo(t).Implements(arenaSafeType)) {
		return false
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.UnsafePointer, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && containsPointers(t.Elem(), visited)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsPointers(t.Field(i).Type, visited) {
				return true
			}
		}
	}
	return false
}
