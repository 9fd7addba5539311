package routing

import "fmt"

// UpstreamError is a failed call to openrouteservice: a transport failure, a
// non-2xx status, or an undecodable body. Body holds the response text the
// API sent with an error status.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("openrouteservice %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0 && e.Err == nil:
		return fmt.Sprintf("openrouteservice %s failed with status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("openrouteservice %s failed: %v", e.Op, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EmptyResultError means the API answered successfully but found nothing:
// no route between the points or no place matching the text.
type EmptyResultError struct {
	Op    string
	Query string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("openrouteservice %s returned no results for %q", e.Op, e.Query)
}
