// Package kverr provides a small multi-error aggregate used where a single
// operation can fail in more than one independent way (e.g. resolving a
// config file's profile and its protection rules together).
package kverr

// Errors is a slice of error with a combined rendering.
type Errors []error

// Error implements the error interface by joining every non-nil error with
// ", ".
func (e Errors) Error() string {
	return ToString([]error(e))
}

// String implements fmt.Stringer.
func (e Errors) String() string {
	return e.Error()
}

// New returns an Errors containing err, or nil if err is nil.
func New(err error) Errors {
	if err == nil {
		return nil
	}
	return Errors{err}
}

// Append appends err to errs if it is non-nil and returns the result.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	return append(errs, err)
}

// ToString renders errors, skipping any nil entries.
func ToString(errors []error) string {
	var out string
	first := true
	for _, e := range errors {
		if e == nil {
			continue
		}
		if !first {
			out += ", "
		}
		first = false
		out += e.Error()
	}
	return out
}
