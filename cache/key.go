// cache/key.go
package cache

import "strings"

// Key is the structural identifier of one cacheable resource plus its
// parameters, e.g. NewKey("vitalsByPatient", patientID). Two keys built from
// the same parts identify the same entry.
type Key []string

func NewKey(name string, args ...string) Key {
	return append(Key{name}, args...)
}

// Name is the operation part of the key.
func (k Key) Name() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// String is the canonical form used for entry lookup and de-duplication.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether the key belongs to the named operation,
// regardless of its parameters.
func (k Key) HasPrefix(name string) bool {
	return k.Name() == name
}
