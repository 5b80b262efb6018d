package images

import (
	"errors"
	"fmt"
)

// DownloadError reports a failed avatar fetch. The URL came from the client,
// so this maps to a bad-input response at the API boundary.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// DecodeError reports bytes that are not a valid PNG image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("not a valid PNG image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IOError reports a failed filesystem operation. These are server-side
// faults; the path is kept out of the message shown to clients by the
// handlers, which log the full error and respond generically.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("image %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsBadInput reports whether err was caused by bad client input (a failed
// download or non-PNG bytes) rather than a server-side fault.
func IsBadInput(err error) bool {
	var decodeErr *DecodeError
	var downloadErr *DownloadError
	return errors.As(err, &decodeErr) || errors.As(err, &downloadErr)
}
