package uistream

import "context"

// Schema validates a decoded JSON value. Validate returns a non-nil error
// describing the mismatch when value does not conform.
type Schema interface {
	Validate(ctx context.Context, value any) error
}

// SchemaFunc adapts a function to the Schema interface.
type SchemaFunc func(ctx context.Context, value any) error

// Validate calls f.
func (f SchemaFunc) Validate(ctx context.Context, value any) error {
	return f(ctx, value)
}

// Interface compliance check.
var _ Schema = SchemaFunc(nil)
