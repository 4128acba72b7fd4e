package apiclient

import (
	"encoding/json"
	"net/http"
)

// DefaultErrorMessage is used when an error response carries no usable
// message.
const DefaultErrorMessage = "Something went wrong"

// ErrorMessage extracts the user-facing message from an API error response
// body. The backend localizes the `message` field from Accept-Language, so
// its text is preferred over any hardcoded fallback. The response body is
// consumed but not closed.
func ErrorMessage(resp *http.Response, fallback string) string {
	if fallback == "" {
		fallback = DefaultErrorMessage
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return fallback
	}

	return body.Message
}

// Paginated is the client-side shape for list responses.
type Paginated[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Take  int `json:"take"`
}

// DecodePaginated converts the backend's paginated envelope
// ({ data, total, skip, take }) into the client convention.
func DecodePaginated[T any](resp *http.Response) (Paginated[T], error) {
	var envelope struct {
		Data  []T `json:"data"`
		Total int `json:"total"`
		Skip  int `json:"skip"`
		Take  int `json:"take"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Paginated[T]{}, err
	}

	return Paginated[T]{
		Items: envelope.Data,
		Total: envelope.Total,
		Skip:  envelope.Skip,
		Take:  envelope.Take,
	}, nil
}
