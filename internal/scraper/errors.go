package scraper

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMethod is wrapped by errors for config methods other than GET and POST
var ErrUnsupportedMethod = errors.New("unsupported method")

// ErrorType categorizes scrape failures
type ErrorType string

const (
	ErrorTypeInvalidURL        ErrorType = "invalid_url"
	ErrorTypeUnsupportedMethod ErrorType = "unsupported_method"
	ErrorTypeNetwork           ErrorType = "network"
	ErrorTypeInvalidSelector   ErrorType = "invalid_selector"
	ErrorTypeParse             ErrorType = "parse"
)

// ScrapeError is returned by every failing step of the pipeline
type ScrapeError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ScrapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScrapeError) Unwrap() error {
	return e.Cause
}

// Is matches ErrUnsupportedMethod for unsupported_method errors
func (e *ScrapeError) Is(target error) bool {
	return target == ErrUnsupportedMethod && e.Type == ErrorTypeUnsupportedMethod
}

func newInvalidURLError(target string, cause error) *ScrapeError {
	return &ScrapeError{
		Type:    ErrorTypeInvalidURL,
		Message: fmt.Sprintf("invalid url %q", target),
		Cause:   cause,
	}
}

func newUnsupportedMethodError(method string) *ScrapeError {
	return &ScrapeError{
		Type:    ErrorTypeUnsupportedMethod,
		Message: fmt.Sprintf("unsupported method: %s", method),
	}
}

func newNetworkError(target string, cause error) *ScrapeError {
	return &ScrapeError{
		Type:    ErrorTypeNetwork,
		Message: fmt.Sprintf("failed to fetch %s", target),
		Cause:   cause,
	}
}

func newInvalidSelectorError(selector string, cause error) *ScrapeError {
	return &ScrapeError{
		Type:    ErrorTypeInvalidSelector,
		Message: fmt.Sprintf("invalid selector %q", selector),
		Cause:   cause,
	}
}

func newParseError(cause error) *ScrapeError {
	return &ScrapeError{
		Type:    ErrorTypeParse,
		Message: "failed to parse document",
		Cause:   cause,
	}
}
