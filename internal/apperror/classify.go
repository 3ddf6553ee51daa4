package apperror

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openai/openai-go/v3"
	"gorm.io/gorm"
)

// Classify maps any error into the closed set. Errors already in the set
// are returned unchanged.
func Classify(err error) Error {
	if err == nil {
		return nil
	}

	var appErr Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var (
		verrs       validator.ValidationErrors
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
		aiErr       *openai.Error
		netErr      net.Error
		opErr       *net.OpError
		dnsErr      *net.DNSError
		pgConnErr   *pgconn.ConnectError
	)

	switch {
	case errors.As(err, &verrs):
		return FromValidator(verrs)
	case errors.As(err, &maxBytesErr):
		return &PayloadTooLargeError{Limit: maxBytesErr.Limit}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &InvalidJSONError{Cause: err}
	case errors.As(err, &typeErr):
		return Invalid(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field))
	case errors.Is(err, io.EOF):
		return &BadRequestError{Message: "Request body is required"}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &DuplicateError{}
	case errors.As(err, &aiErr):
		return &AIServiceError{Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TimeoutError{}
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn),
		errors.As(err, &pgConnErr), poolClosed(err):
		return &DatabaseError{Cause: err}
	case errors.As(err, &dnsErr), errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return &NetworkError{Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &NetworkError{Cause: err}
	}

	return &InternalError{Cause: err, Stack: fmt.Sprintf("%+v", err)}
}

// poolClosed matches database/sql's unexported "database is closed" error.
func poolClosed(err error) bool {
	return strings.Contains(err.Error(), "sql: database is closed")
}

// FromValidator converts validator failures into a ValidationError using
// the field's JSON name when one was registered.
func FromValidator(verrs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: validatorMessage(fe),
		})
	}
	return out
}

func validatorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", field, fe.Tag())
	}
}

// PublicMessage returns the client-facing message for e. In production,
// 5xx kinds never leak the underlying cause.
func PublicMessage(e Error, production bool) string {
	switch t := e.(type) {
	case *AIServiceError:
		return "AI service temporarily unavailable"
	case *DatabaseError:
		return "Database connection error"
	case *NetworkError:
		return "Network error, please try again later"
	case *InternalError:
		if production || t.Cause == nil {
			return "Internal server error"
		}
		return t.Error()
	case *NotFoundError, *ValidationError, *DuplicateError, *AuthError,
		*ForbiddenError, *UploadError, *RateLimitError, *PayloadTooLargeError,
		*BadRequestError, *InvalidJSONError, *UnsupportedMediaTypeError, *TimeoutError:
		return t.Error()
	default:
		panic(fmt.Sprintf("apperror: unhandled kind %T", e))
	}
}

// Details returns kind-specific fields for development responses.
func Details(e Error) map[string]interface{} {
	switch t := e.(type) {
	case *ValidationError:
		return map[string]interface{}{"fields": t.Fields}
	case *DuplicateError:
		return map[string]interface{}{"field": t.Field, "value": t.Value}
	case *RateLimitError:
		return map[string]interface{}{"policy": t.Policy, "limit": t.Limit, "retryAfter": t.RetryAfter}
	case *NotFoundError:
		return map[string]interface{}{"resource": t.resource(), "id": t.ID}
	case *UploadError:
		return map[string]interface{}{"field": t.Field}
	case *PayloadTooLargeError:
		return map[string]interface{}{"limit": t.Limit}
	case *UnsupportedMediaTypeError:
		return map[string]interface{}{"contentType": t.ContentType}
	case *AIServiceError:
		return causeDetails(t.Cause)
	case *DatabaseError:
		return causeDetails(t.Cause)
	case *NetworkError:
		return causeDetails(t.Cause)
	case *InternalError:
		return causeDetails(t.Cause)
	case *InvalidJSONError:
		return causeDetails(t.Cause)
	case *AuthError:
		return causeDetails(t.Cause)
	case *ForbiddenError, *BadRequestError, *TimeoutError:
		return nil
	default:
		panic(fmt.Sprintf("apperror: unhandled kind %T", e))
	}
}

func causeDetails(cause error) map[string]interface{} {
	if cause == nil {
		return nil
	}
	return map[string]interface{}{"cause": cause.Error()}
}
