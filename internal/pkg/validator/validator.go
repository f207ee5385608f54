package validator

// Validator validates structs using their field tags.
type Validator interface {
	Validate(data any) error
}
