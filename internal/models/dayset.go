package models

import "sort"

// DaySet is a set of canonical day keys.
type DaySet map[string]struct{}

func NewDaySet(keys ...string) DaySet {
	s := make(DaySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s DaySet) Add(key string) {
	s[key] = struct{}{}
}

func (s DaySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s DaySet) Len() int {
	return len(s)
}

// Sorted returns the keys in ascending (chronological) order.
func (s DaySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
