package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind is the value reported as error.type in the error envelope.
type Kind string

const (
	KindNotFound             Kind = "NotFoundError"
	KindValidation           Kind = "ValidationError"
	KindDuplicate            Kind = "DuplicateKeyError"
	KindAuth                 Kind = "AuthenticationError"
	KindForbidden            Kind = "ForbiddenError"
	KindUpload               Kind = "UploadError"
	KindAIService            Kind = "AIServiceError"
	KindRateLimit            Kind = "RateLimitError"
	KindDatabase             Kind = "DatabaseError"
	KindNetwork              Kind = "NetworkError"
	KindPayloadTooLarge      Kind = "PayloadTooLargeError"
	KindBadRequest           Kind = "BadRequestError"
	KindInvalidJSON          Kind = "SyntaxError"
	KindUnsupportedMediaType Kind = "UnsupportedMediaTypeError"
	KindTimeout              Kind = "TimeoutError"
	KindInternal             Kind = "InternalServerError"
)

// Error is the closed set of failures the API reports. Only types in this
// package implement it.
type Error interface {
	error
	Kind() Kind
	Status() int
	sealed()
}

// NotFoundError reports a missing or malformed resource reference.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.resource())
	}
	return fmt.Sprintf("%s not found with id: %s", e.resource(), e.ID)
}

func (e *NotFoundError) resource() string {
	if e.Resource == "" {
		return "Resource"
	}
	return e.Resource
}

func (e *NotFoundError) Kind() Kind  { return KindNotFound }
func (e *NotFoundError) Status() int { return http.StatusNotFound }
func (*NotFoundError) sealed()       {}

// FieldError is a single failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failed field of a request or model.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	if len(msgs) == 0 {
		return "Validation failed"
	}
	return strings.Join(msgs, ", ")
}

func (e *ValidationError) Kind() Kind  { return KindValidation }
func (e *ValidationError) Status() int { return http.StatusBadRequest }
func (*ValidationError) sealed()       {}

// Invalid builds a ValidationError for one field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// DuplicateError reports a uniqueness violation.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "Duplicate field value entered"
	}
	return fmt.Sprintf("%s '%s' already exists", e.Field, e.Value)
}

func (e *DuplicateError) Kind() Kind  { return KindDuplicate }
func (e *DuplicateError) Status() int { return http.StatusBadRequest }
func (*DuplicateError) sealed()       {}

// AuthError reports a missing, invalid or expired credential.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "Invalid token. Please log in again."
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Cause }
func (e *AuthError) Kind() Kind    { return KindAuth }
func (e *AuthError) Status() int   { return http.StatusUnauthorized }
func (*AuthError) sealed()         {}

// ForbiddenError reports an authenticated caller acting outside its rights.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }
func (e *ForbiddenError) Kind() Kind    { return KindForbidden }
func (e *ForbiddenError) Status() int   { return http.StatusForbidden }
func (*ForbiddenError) sealed()         {}

// UploadError reports a multipart upload constraint violation.
type UploadError struct {
	Field   string
	Message string
}

func (e *UploadError) Error() string { return e.Message }
func (e *UploadError) Kind() Kind    { return KindUpload }
func (e *UploadError) Status() int   { return http.StatusBadRequest }
func (*UploadError) sealed()         {}

// AIServiceError wraps any failure talking to the completion provider.
type AIServiceError struct {
	Cause error
}

func (e *AIServiceError) Error() string {
	if e.Cause == nil {
		return "recipe generation failed"
	}
	return "recipe generation failed: " + e.Cause.Error()
}

func (e *AIServiceError) Unwrap() error { return e.Cause }
func (e *AIServiceError) Kind() Kind    { return KindAIService }
func (e *AIServiceError) Status() int   { return http.StatusServiceUnavailable }
func (*AIServiceError) sealed()         {}

// RateLimitError reports an exhausted rate limit window.
type RateLimitError struct {
	Policy     string
	Limit      int
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return "Too many requests, please try again later."
}

func (e *RateLimitError) Kind() Kind  { return KindRateLimit }
func (e *RateLimitError) Status() int { return http.StatusTooManyRequests }
func (*RateLimitError) sealed()       {}

// DatabaseError reports an unreachable or failing store.
type DatabaseError struct {
	Cause error
}

func (e *DatabaseError) Error() string {
	if e.Cause == nil {
		return "database connection error"
	}
	return "database connection error: " + e.Cause.Error()
}

func (e *DatabaseError) Unwrap() error { return e.Cause }
func (e *DatabaseError) Kind() Kind    { return KindDatabase }
func (e *DatabaseError) Status() int   { return http.StatusServiceUnavailable }
func (*DatabaseError) sealed()         {}

// NetworkError reports a transport failure (reset, DNS, dial timeout).
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return "network error"
	}
	return "network error: " + e.Cause.Error()
}

func (e *NetworkError) Unwrap() error { return e.Cause }
func (e *NetworkError) Kind() Kind    { return KindNetwork }
func (e *NetworkError) Status() int   { return http.StatusServiceUnavailable }
func (*NetworkError) sealed()         {}

// PayloadTooLargeError reports a body over the configured cap.
type PayloadTooLargeError struct {
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("Request entity too large (limit %d bytes)", e.Limit)
}

func (e *PayloadTooLargeError) Kind() Kind  { return KindPayloadTooLarge }
func (e *PayloadTooLargeError) Status() int { return http.StatusRequestEntityTooLarge }
func (*PayloadTooLargeError) sealed()       {}

// BadRequestError is a generic 400 for malformed requests.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }
func (e *BadRequestError) Kind() Kind    { return KindBadRequest }
func (e *BadRequestError) Status() int   { return http.StatusBadRequest }
func (*BadRequestError) sealed()         {}

// InvalidJSONError reports an unparsable request body.
type InvalidJSONError struct {
	Cause error
}

func (e *InvalidJSONError) Error() string { return "Invalid JSON format" }
func (e *InvalidJSONError) Unwrap() error { return e.Cause }
func (e *InvalidJSONError) Kind() Kind    { return KindInvalidJSON }
func (e *InvalidJSONError) Status() int   { return http.StatusBadRequest }
func (*InvalidJSONError) sealed()         {}

// UnsupportedMediaTypeError reports a Content-Type outside the accepted set.
type UnsupportedMediaTypeError struct {
	ContentType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return "Unsupported content type. Use application/json or multipart/form-data"
}

func (e *UnsupportedMediaTypeError) Kind() Kind  { return KindUnsupportedMediaType }
func (e *UnsupportedMediaTypeError) Status() int { return http.StatusUnsupportedMediaType }
func (*UnsupportedMediaTypeError) sealed()       {}

// TimeoutError reports a request that exceeded its deadline.
type TimeoutError struct {
	After string
}

func (e *TimeoutError) Error() string { return "Request timeout" }
func (e *TimeoutError) Kind() Kind    { return KindTimeout }
func (e *TimeoutError) Status() int   { return http.StatusRequestTimeout }
func (*TimeoutError) sealed()         {}

// InternalError is the fallback for anything unclassified.
type InternalError struct {
	Cause error
	Stack string
}

func (e *InternalError) Error() string {
	if e.Cause == nil {
		return "Internal server error"
	}
	return e.Cause.Error()
}

func (e *InternalError) Unwrap() error { return e.Cause }
func (e *InternalError) Kind() Kind    { return KindInternal }
func (e *InternalError) Status() int   { return http.StatusInternalServerError }
func (*InternalError) sealed()         {}
