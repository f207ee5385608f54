// Package validator checks usecase input structs against their validate tags.
//
// The Validator interface hides the go-playground/validator v10 engine and
// returns translated, field-keyed messages suitable for API responses.
package validator
