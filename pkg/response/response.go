package response

type APIResponseCode int

const (
	APIResponseCodeOK         APIResponseCode = 0
	APIResponseCodeBadRequest APIResponseCode = 40000
	APIResponseCodeNotFound   APIResponseCode = 40400
	APIResponseCodeDomain     APIResponseCode = 42200
	APIResponseCodeError      APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:         "ok",
	APIResponseCodeBadRequest: "invalid request",
	APIResponseCodeNotFound:   "not found",
	APIResponseCodeDomain:     "value outside allowed domain",
	APIResponseCodeError:      "internal server error",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// GateFailure is the body returned when a request is stopped before reaching a
// handler (authentication or rate limiting).
type GateFailure struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter *int   `json:"retryAfter,omitempty"`
}

func Unauthorized(message string) *GateFailure {
	return &GateFailure{Success: false, Message: message}
}

func TooManyRequests(message string, retryAfterSeconds int) *GateFailure {
	return &GateFailure{Success: false, Message: message, RetryAfter: &retryAfterSeconds}
}
