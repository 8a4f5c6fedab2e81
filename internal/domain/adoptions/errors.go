package adoptions

import (
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Kind clasifica el error según la taxonomía del boundary:
// el original devolvía objetos con campos opcionales inconsistentes;
// acá cada categoría es una variante explícita con sus campos fijos.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindRateLimit  Kind = "rate_limit"
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
)

// Códigos machine-readable que viajan hasta la UI y la telemetría.
const (
	CodeMissingRequiredFields  = "MISSING_REQUIRED_FIELDS"
	CodeInvalidEmailFormat     = "INVALID_EMAIL_FORMAT"
	CodeInvalidPhoneFormat     = "INVALID_PHONE_FORMAT"
	CodeInvalidHousingType     = "INVALID_HOUSING_TYPE"
	CodeReasonTooShort         = "REASON_TOO_SHORT"
	CodeReasonTooLong          = "REASON_TOO_LONG"
	CodeInvalidMeetingTime     = "INVALID_MEETING_TIME"
	CodeInvalidStatus          = "INVALID_STATUS"
	CodeMissingRejectionReason = "MISSING_REJECTION_REASON"
	CodeInvalidCommunication   = "INVALID_COMMUNICATION_TYPE"
	CodeInvalidPage            = "INVALID_PAGE"
	CodeInvalidLimit           = "INVALID_LIMIT"
	CodeDuplicateApplication   = "DUPLICATE_APPLICATION"
	CodeSessionExpired         = "SESSION_EXPIRED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeRateLimited            = "RATE_LIMITED"
	CodeServerError            = "SERVER_ERROR"
	CodeNetworkError           = "NETWORK_ERROR"
)

// FieldError es un error por campo para formularios.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error es la única forma de error que sale del service.
// StatusCode es 0 para fallas de red (no hubo respuesta).
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	StatusCode int
	Details    []FieldError
	RequestID  string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (%s, request_id=%s)", e.Kind, e.Message, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Code)
}

// Retryable indica si la categoría admite reintento (red y 5xx).
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// Violations es el resultado de los validadores: campo -> error.
// Mapa vacío => payload válido.
type Violations map[string]FieldError

func (v Violations) add(field, code, message string) {
	v[field] = FieldError{Field: field, Code: code, Message: message}
}

// Fields devuelve los campos con error, ordenados (salida estable para UI y tests).
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// NewValidationError arma el error de validación con detalle por campo.
// Nunca llega a la red: se corta antes de llamar al backend.
func NewValidationError(v Violations) *Error {
	details := make([]FieldError, 0, len(v))
	for _, f := range v.Fields() {
		details = append(details, v[f])
	}

	code := CodeMissingRequiredFields
	// Si hay un único tipo de violación, usamos su código como principal.
	if len(details) > 0 {
		code = details[0].Code
		for _, d := range details[1:] {
			if d.Code != code {
				code = CodeMissingRequiredFields
				break
			}
		}
	}

	return &Error{
		Kind:       KindValidation,
		Code:       code,
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

func newValidationCode(code, message string) *Error {
	return &Error{
		Kind:       KindValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func newNetworkError(message, requestID string) *Error {
	return &Error{
		Kind:      KindNetwork,
		Code:      CodeNetworkError,
		Message:   message,
		RequestID: requestID,
	}
}

// FromStatus normaliza una respuesta no-2xx del backend a la variante
// que corresponde. code/message pueden venir del body del backend; si
// faltan se usan defaults por categoría.
func FromStatus(status int, code, message, requestID string, details []FieldError, retryAfter time.Duration) *Error {
	e := &Error{
		StatusCode: status,
		Code:       code,
		Message:    message,
		RequestID:  requestID,
		Details:    details,
		RetryAfter: retryAfter,
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
		e.fill(CodeSessionExpired, "authentication required")
	case status == http.StatusForbidden:
		e.Kind = KindPermission
		e.fill(CodeForbidden, "you do not have permission to perform this action")
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.fill(CodeNotFound, "resource not found")
	case status == http.StatusConflict:
		e.Kind = KindConflict
		e.fill(CodeDuplicateApplication, "an adoption request for this pet already exists")
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.fill(CodeRateLimited, "too many requests, slow down")
	case status >= 500:
		e.Kind = KindServer
		e.fill(CodeServerError, "something went wrong, please try again later")
	default:
		e.Kind = KindValidation
		e.fill(CodeMissingRequiredFields, "invalid request")
	}

	return e
}

func (e *Error) fill(code, message string) {
	if e.Code == "" {
		e.Code = code
	}
	if e.Message == "" {
		e.Message = message
	}
}
