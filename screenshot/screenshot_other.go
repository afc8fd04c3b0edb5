//go:build !darwin

package screenshot

// HasPermission reports whether screen capture is allowed. Only macOS
// gates it behind a permission.
func HasPermission() bool {
	return true
}

// RequestPermission is a no-op outside macOS.
func RequestPermission() {}
