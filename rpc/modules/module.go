package modules

const (
	codeInvalidParams = -32602
	codeNotFound      = -32001
	codeServerError   = -32000
)

// ModuleError is the failure shape RPC modules return to the server layer.
type ModuleError struct {
	HTTPStatus int
	Code       int
	Message    string
	Data       interface{}
}

func (e *ModuleError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}
