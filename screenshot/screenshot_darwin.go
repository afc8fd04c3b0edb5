package screenshot

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Foundation
#import <CoreGraphics/CoreGraphics.h>
#import <Foundation/Foundation.h>

bool hasScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        return CGPreflightScreenCaptureAccess();
    }
    // Fallback for macOS 10.15
    // Note: On 10.15, there isn't a direct preflight API.
    // We can try to capture a tiny bit of screen to check.
    return true; // Assume true or implement a check
}

void requestScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        CGRequestScreenCaptureAccess();
    }
}
*/
import "C"

// HasPermission checks if the app has screen recording permission.
func HasPermission() bool {
	return bool(C.hasScreenRecordingPermission())
}

// RequestPermission asks the system for screen recording permission.
// The vision loop sees black frames until it is granted.
func RequestPermission() {
	C.requestScreenRecordingPermission()
}
