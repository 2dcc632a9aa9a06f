package plumbing

import (
	"errors"
	"fmt"
)

// ErrStop is returned by a ForEach callback to end iteration early
// without propagating an error.
var ErrStop = errors.New("stop iter")

// noSuchObject is returned when an object id is absent from a Backend.
type noSuchObject struct {
	oid Hash
}

func (e *noSuchObject) Error() string {
	return fmt.Sprintf("blameline: no such object: %s", e.oid)
}

// NoSuchObject builds the error a Backend returns for a missing object.
func NoSuchObject(oid Hash) error {
	return &noSuchObject{oid: oid}
}

// IsNoSuchObject reports whether err was produced by NoSuchObject.
func IsNoSuchObject(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*noSuchObject)
	return ok
}
