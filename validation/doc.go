// Package validation checks structured input such as node-type specs and
// configuration before it is used.
//
// It supports both struct tag validation (using go-playground/validator) and
// programmatic validation with error collection. Both report an
// *errors.AppError whose details carry the individual field errors.
//
// # Struct Tag Validation
//
//	type PropertySpec struct {
//	    ID   string `json:"id" validate:"required"`
//	    Type string `json:"type" validate:"required,oneof=string number"`
//	}
//	err := validation.Validate(spec)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Regexp("pattern", spec.Pattern).OrderedFloat("minimum", spec.Minimum, spec.Maximum)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
