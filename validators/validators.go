package validators

// Validator is one constraint check. A disabled validator never reports, and
// a validator without a Message only gates form submission.
type Validator[T any] struct {
	Enabled bool
	IsValid func(T) bool
	Message string
}

// ErrorMessages returns the messages of every enabled validator that rejects
// value, in declaration order. Callers usually show only the first.
func ErrorMessages[T any](value T, validators []Validator[T]) []string {
	var messages []string
	for _, v := range validators {
		if !v.Enabled || v.IsValid(value) {
			continue
		}
		if v.Message != "" {
			messages = append(messages, v.Message)
		}
	}
	return messages
}

// FirstError returns the first message from ErrorMessages, or "".
func FirstError[T any](value T, validators []Validator[T]) string {
	if msgs := ErrorMessages(value, validators); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
