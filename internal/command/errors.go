package command

import "fmt"

// Error carries a JSON-RPC error code alongside the message.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewNotFoundError(name string) *Error {
	return &Error{
		Code:    -32601,
		Message: fmt.Sprintf("command not found: %s", name),
	}
}

func NewExecutionError(name string, err error) *Error {
	return &Error{
		Code:    -32603,
		Message: fmt.Sprintf("error executing command %s: %v", name, err),
	}
}

func NewInvalidParamsError(name string, err error) *Error {
	return &Error{
		Code:    -32602,
		Message: fmt.Sprintf("invalid params for %s: %v", name, err),
	}
}
