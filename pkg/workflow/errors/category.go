// Package errors classifies upstream failures and retries the transient
// ones with exponential backoff. Completion, embedding, web-search and
// locator calls all route their HTTP failures through here.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Category says how a failure should be handled.
type Category int

const (
	// CategoryTransient indicates a retry will likely help: rate limits,
	// timeouts, temporary network failures, upstream 5xx.
	CategoryTransient Category = iota

	// CategoryPermanent indicates a retry will not help: bad requests,
	// authentication failures, cancelled contexts.
	CategoryPermanent
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and the operation
// that produced it.
type CategorizedError struct {
	Err      error
	Category Category
	Context  string
	Retries  int
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)", e.Context, e.Err, e.Category, e.Retries)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)", e.Err, e.Category, e.Retries)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error { return e.Err }

// Transient wraps err as a transient failure.
func Transient(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryTransient, Context: context}
}

// Permanent wraps err as a permanent failure.
func Permanent(err error, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryPermanent, Context: context}
}

// HTTPStatusError reports a non-2xx response from an upstream API.
type HTTPStatusError struct {
	Op     string
	Status int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

// Categorize determines how an error should be handled. Already
// categorized errors keep their category; otherwise rate limits, 5xx
// responses and network timeouts are transient and everything else is
// permanent.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryPermanent
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.Status == http.StatusTooManyRequests || statusErr.Status >= 500 {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTransient
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "timeout", "connection refused", "connection reset", "temporarily unavailable"} {
		if strings.Contains(msg, marker) {
			return CategoryTransient
		}
	}

	return CategoryPermanent
}
