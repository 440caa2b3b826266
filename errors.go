package hdrpeak

import "errors"

var (
	ErrUnsupportedFormat = errors.New("hdrpeak: unsupported image format")
	ErrShapeMismatch     = errors.New("hdrpeak: mask and image dimensions differ")
	ErrInvalidImage      = errors.New("hdrpeak: invalid image")
)

// IOError reports a failure to load or save an image file.
type IOError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}
