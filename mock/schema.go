package mock

import (
	"context"

	"github.com/fwojciec/uistream"
)

// Interface compliance check.
var _ uistream.Schema = (*Schema)(nil)

// Schema is a test double for uistream.Schema.
// Set ValidateFn before calling Validate.
type Schema struct {
	ValidateFn func(ctx context.Context, value any) error
}

// Validate delegates to ValidateFn.
func (s *Schema) Validate(ctx context.Context, value any) error {
	return s.ValidateFn(ctx, value)
}
