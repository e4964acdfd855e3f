package domainerr

import "net/http"

// Kind classifies a domain error.
type Kind string

const (
	KindValidation                  Kind = "VALIDATION_ERROR"
	KindRedisSetup                  Kind = "REDIS_SETUP_ERROR"
	KindNoRecord                    Kind = "NO_RECORD_FOUND_ERROR"
	KindNotFound                    Kind = "NOT_FOUND_ERROR"
	KindCreate                      Kind = "CREATE_ERROR"
	KindUpdate                      Kind = "UPDATE_ERROR"
	KindLog                         Kind = "LOG_ERROR"
	KindMongoDB                     Kind = "MONGO_DB_ERROR"
	KindInvalidResource             Kind = "INVALID_RESOURCE_ERROR"
	KindInvalidKey                  Kind = "INVALID_KEY_ERROR"
	KindInvalidUser                 Kind = "INVALID_USER_ERROR"
	KindRedis                       Kind = "REDIS_ERROR"
	KindBadRequest                  Kind = "BAD_REQUEST_ERROR"
	KindServer                      Kind = "SERVER_ERROR"
	KindConflict                    Kind = "CONFLICT_ERROR"
	KindUnAuthorized                Kind = "UNAUTHORIZED_ERROR"
	KindAuthentication              Kind = "AUTHENTICATION_ERROR"
	KindForbidden                   Kind = "FORBIDDEN_ERROR"
	KindRateLimitExceeded           Kind = "RATE_LIMIT_EXCEEDED"
	KindPayloadTooLarge             Kind = "PAYLOAD_TOO_LARGE"
	KindMethodNotAllowed            Kind = "METHOD_NOT_ALLOWED"
	KindNotAcceptable               Kind = "NOT_ACCEPTABLE"
	KindTimeout                     Kind = "TIMEOUT"
	KindUnsupportedMediaType        Kind = "UNSUPPORTED_MEDIA_TYPE"
	KindPreconditionFailed          Kind = "PRECONDITION_FAILED"
	KindTooManyRequests             Kind = "TOO_MANY_REQUESTS"
	KindRequestHeaderFieldsTooLarge Kind = "REQUEST_HEADER_FIELDS_TOO_LARGE"
	KindInternal                    Kind = "INTERNAL_ERROR"
	KindPayment                     Kind = "PAYMENT_ERROR"
	KindProhibited                  Kind = "PROHIBITED_ERROR"
)

// statusTable is the only place a kind is mapped to a transport status.
var statusTable = map[Kind]int{
	KindValidation:                  http.StatusBadRequest,
	KindRedisSetup:                  http.StatusInternalServerError,
	KindNoRecord:                    http.StatusNotFound,
	KindNotFound:                    http.StatusNotFound,
	KindCreate:                      http.StatusInternalServerError,
	KindUpdate:                      http.StatusInternalServerError,
	KindLog:                         http.StatusInternalServerError,
	KindMongoDB:                     http.StatusInternalServerError,
	KindInvalidResource:             http.StatusUnprocessableEntity,
	KindInvalidKey:                  http.StatusBadRequest,
	KindInvalidUser:                 http.StatusBadRequest,
	KindRedis:                       http.StatusInternalServerError,
	KindBadRequest:                  http.StatusBadRequest,
	KindServer:                      http.StatusInternalServerError,
	KindConflict:                    http.StatusConflict,
	KindUnAuthorized:                http.StatusUnauthorized,
	KindAuthentication:              http.StatusUnauthorized,
	KindForbidden:                   http.StatusForbidden,
	KindRateLimitExceeded:           http.StatusTooManyRequests,
	KindPayloadTooLarge:             http.StatusRequestEntityTooLarge,
	KindMethodNotAllowed:            http.StatusMethodNotAllowed,
	KindNotAcceptable:               http.StatusNotAcceptable,
	KindTimeout:                     http.StatusRequestTimeout,
	KindUnsupportedMediaType:        http.StatusUnsupportedMediaType,
	KindPreconditionFailed:          http.StatusPreconditionFailed,
	KindTooManyRequests:             http.StatusTooManyRequests,
	KindRequestHeaderFieldsTooLarge: http.StatusRequestHeaderFieldsTooLarge,
	KindInternal:                    http.StatusInternalServerError,
	KindPayment:                     http.StatusPaymentRequired,
	KindProhibited:                  http.StatusUnavailableForLegalReasons,
}

// StatusOf returns the transport status for kind. Unknown kinds map to 500.
func StatusOf(kind Kind) int {
	if s, ok := statusTable[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Kinds lists every known kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(statusTable))
	for k := range statusTable {
		out = append(out, k)
	}
	return out
}
