package errors

import "net/http"

// Rejection carries a hook-originated rejection. The three fields are
// surfaced verbatim on the wire as error, error_description and error_uri.
type Rejection struct {
	Err         string
	Description string
	URI         string
}

func (r *Rejection) Error() string {
	if r.Description != "" {
		return r.Err + ": " + r.Description
	}
	return r.Err
}

// Reject builds a Rejection for the given error code.
func Reject(err, description, uri string) *Rejection {
	return &Rejection{Err: err, Description: description, URI: uri}
}

// Descriptions error description
var Descriptions = map[error]string{
	ErrInvalidRequest: "The request is missing a required parameter, includes an invalid parameter value, or is otherwise malformed",
}

// StatusCodes response error HTTP status code
var StatusCodes = map[error]int{
	ErrInvalidRequest: http.StatusBadRequest,
}
