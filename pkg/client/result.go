package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Result is the settlement of one logical request. Every entry point
// returns a non-nil Result and never panics or raises: HTTP failures,
// transport failures and cancellations all arrive here, tagged through Err.
type Result struct {
	// OK is true iff a response was received and its status does not
	// indicate failure.
	OK bool

	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	// FromCache marks responses served without a transport call.
	FromCache bool

	// Request is the configuration the request settled with.
	Request *Request

	// Elapsed is the wall time from submission to settlement.
	Elapsed time.Duration

	// Err is nil iff OK. For http-kind failures the response body and
	// status are still populated on the Result.
	Err *RequestError
}

// JSON decodes the response body into v.
func (r *Result) JSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// Text returns the response body as a string.
func (r *Result) Text() string {
	return string(r.Body)
}
