package http

type ErrorResponse struct {
	Error string `json:"error"`
}

// Identified wraps a request payload with the id of the member who issued it.
type Identified[T any] struct {
	RequesterID string `json:"requesterID" binding:"required"`
	Value       T      `json:"value"`
}
