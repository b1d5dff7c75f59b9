// Package validators implements the per-kind property checks used by the
// problem collector and by editor forms.
//
// Each family returns an ordered list of Validator values. Order matters:
// forms display only the first failing message, so the most important check
// comes first.
//
//	msgs := validators.ErrorMessages("10.0", validators.Number(validators.NumberOptions{Integer: true}))
//	// msgs == []string{"Value must be an integer."}
package validators
