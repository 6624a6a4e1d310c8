package command

import "strings"

// StructuralError is a fast-fail parse error: empty input, missing action,
// unknown domain or action. It is raised before any argument or field work
// and carries exactly one message.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return e.Msg }

func structural(msg string) error { return &StructuralError{Msg: msg} }

// ValidationErrors collects every failed parameter-schema and per-field check
// for one context. All messages are surfaced together; dispatch never happens
// while the list is non-empty.
type ValidationErrors struct {
	Messages []string
}

func (e *ValidationErrors) Error() string {
	return strings.Join(e.Messages, "\n")
}
