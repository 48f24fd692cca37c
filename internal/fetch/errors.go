package fetch

import (
	"errors"
	"fmt"
)

// ErrNoEntries is returned when extraction succeeds but yields nothing usable
var ErrNoEntries = errors.New("no usable entries")

// FetchError reports that a locator could not be resolved into entries
type FetchError struct {
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
