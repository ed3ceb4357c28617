package reports

import "errors"

// Error taxonomy for repository operations. Handlers map these onto
// HTTP status codes; wrap with fmt.Errorf("%w: detail", ...) to attach
// specifics while keeping errors.Is checks working.
var (
	ErrValidation        = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("operation not permitted for role")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("report not found")
)
