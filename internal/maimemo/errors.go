package maimemo

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for specific API conditions.
var (
	ErrUnauthorized = errors.New("unauthorized: invalid or missing API token")
	ErrUnsuccessful = errors.New("API reported success=false")
	ErrMalformed    = errors.New("malformed response")
)

// HTTPError represents a non-2xx response with its status code and raw body.
//
// NOTE: The body is kept raw because the error payload shape is not documented
// and we only need it for debugging.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	return fmt.Sprintf("maimemo API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// readHTTPError reads the response body and returns an HTTPError.
func readHTTPError(resp *http.Response) HTTPError {
	body, readErr := io.ReadAll(resp.Body)
	bodyStr := string(body)
	if readErr != nil {
		bodyStr += fmt.Sprintf(" (body read error: %v)", readErr)
	}
	return HTTPError{StatusCode: resp.StatusCode, Body: bodyStr}
}

// TransportError is returned when a read that must be visible to the caller
// could not be completed: the request failed, the status was not 2xx, or the
// body could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CreateError is returned when a notepad could not be created.
type CreateError struct {
	Title string
	Err   error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("creating notepad %q: %v", e.Title, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// UpdateError is returned when a notepad's content could not be written.
type UpdateError struct {
	ID  string
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("updating notepad %s: %v", e.ID, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
