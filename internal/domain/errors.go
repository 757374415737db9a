package domain

import "errors"

var (
	// ErrSearchAPIFailure is returned when the marketplace search request fails
	// at the transport level or with a non-2xx status
	ErrSearchAPIFailure = errors.New("search API request failed")

	// ErrDecodeResponse is returned when the search response body is not valid JSON
	ErrDecodeResponse = errors.New("failed to decode response")

	// ErrUnexpectedShape is returned when the response JSON has a "data" value
	// that is not an object
	ErrUnexpectedShape = errors.New("unexpected response shape")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMalformedRecord is returned when a single product record cannot be decoded
	ErrMalformedRecord = errors.New("malformed product record")
)
