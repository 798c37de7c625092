package index

import "errors"

var (
	// ErrInvalidPath indicates a path that is neither an existing file nor a directory.
	ErrInvalidPath = errors.New("not a valid file or directory")

	// ErrCorruptIndex indicates a snapshot file that does not have the expected shape.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrUnsupportedFormat indicates a file extension with no registered extractor.
	// Add never returns it; such files are reported in Report.Skipped.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// FileError records a per-file failure that did not abort the batch.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Report summarizes the effect of a batch operation.
type Report struct {
	Indexed []string
	Removed []string
	Skipped []FileError
	Failed  []FileError
}

// Merge appends the entries of other to r.
func (r *Report) Merge(other Report) {
	r.Indexed = append(r.Indexed, other.Indexed...)
	r.Removed = append(r.Removed, other.Removed...)
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.Failed = append(r.Failed, other.Failed...)
}
