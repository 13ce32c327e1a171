package pricing

// ErrInvalidInput is returned when a pricing operation receives input it can
// never act on. It is fatal to the calling operation and never retried.
type ErrInvalidInput struct {
	Field  string
	Reason string
}

func (e ErrInvalidInput) Error() string {
	return e.Field + ": " + e.Reason
}
