package tool

import "fmt"

// Result captures the outcome of a tool invocation.
type Result struct {
	Success bool
	Output  string
	Data    any
	Err     string
}

// Ok builds a successful result with a textual output.
func Ok(output string) *Result {
	return &Result{Success: true, Output: output}
}

// OkData builds a successful result carrying structured data.
func OkData(output string, data any) *Result {
	return &Result{Success: true, Output: output, Data: data}
}

// Fail builds a failed result with a human-readable message. Validation
// failures use this instead of returning an error, so the loop keeps going.
func Fail(format string, args ...any) *Result {
	msg := fmt.Sprintf(format, args...)
	return &Result{Success: false, Output: msg, Err: msg}
}
