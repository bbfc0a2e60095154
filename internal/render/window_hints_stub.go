//go:build !linux

package render

// ApplyWindowHints does nothing outside X11.
func ApplyWindowHints(WindowHints) error {
	return nil
}

// CloseWindowHints does nothing outside X11.
func CloseWindowHints() {}
