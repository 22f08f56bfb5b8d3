package extraction

// TransportError wraps a failure to reach the language-model capability.
// Transient: the orchestrator retries these.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "llm transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the model output is not the requested
// structured form. Not retried: it signals a bad model/prompt combination
// rather than a transient fault. Raw carries the full output for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse llm output: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when parsed model output violates the risk
// register schema. Not retried.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "llm output failed schema validation: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
