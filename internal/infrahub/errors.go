package infrahub

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx HTTP response from the backend. 5xx responses are
// transient and retried; 4xx responses are client errors and never retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("infrahub returned %d: %s", e.StatusCode, e.Message)
}

// GraphQLError is a 2xx response whose body carries GraphQL-level errors.
// These are application errors (bad kind, bad filter, constraint violation)
// and are never retried.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "infrahub graphql error: " + strings.Join(e.Messages, "; ")
}

// IsRetryable reports whether an error from a client call is transient:
// a network-level failure or a 5xx response. 4xx responses and GraphQL
// application errors are permanent for a given request.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return false
	}
	return true
}

// isAlreadyExists matches the backend's duplicate-branch rejection so branch
// creation can be treated as idempotent by name.
func isAlreadyExists(err error) bool {
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		for _, m := range gqlErr.Messages {
			if strings.Contains(strings.ToLower(m), "already exist") {
				return true
			}
		}
	}
	return false
}
