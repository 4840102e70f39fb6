package domain

import "errors"

// CodeOf extracts the classified code from err. Anything unclassified is
// treated as unknown rather than dropped.
func CodeOf(err error) ErrorCode {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrorCodeUnknown
}
