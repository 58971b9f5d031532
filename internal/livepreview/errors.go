package livepreview

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotLoaded means no item is held yet; the notification is ignored.
	ErrNotLoaded = errors.New("livepreview: no item loaded")

	// ErrMalformedNotification means the notification does not apply to the
	// held item graph; it is ignored.
	ErrMalformedNotification = errors.New("livepreview: notification does not match loaded item")
)

// PatchResolutionError means linked items referenced by an update could not
// be fetched. The update is dropped and the previous state stays displayed.
type PatchResolutionError struct {
	Codenames []string
	Err       error
}

func (e *PatchResolutionError) Error() string {
	msg := fmt.Sprintf("livepreview: resolving linked items [%s]", strings.Join(e.Codenames, ", "))
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + ": not returned by the API"
}

func (e *PatchResolutionError) Unwrap() error { return e.Err }

// Ignorable reports whether err is one of the outcomes that leave the page
// untouched without being worth more than a debug log.
func Ignorable(err error) bool {
	return errors.Is(err, ErrNotLoaded) || errors.Is(err, ErrMalformedNotification)
}
