package organize

// Mover defines the file operation a labeling session needs.
// This allows for dependency injection in tests and other parts of the application
type Mover interface {
	// MoveToLabel moves dir/filename into dir/label/ and returns the destination
	MoveToLabel(dir, filename, label string) (string, error)
}

// Ensure Engine implements the Mover interface
var _ Mover = (*Engine)(nil)
