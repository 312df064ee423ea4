//go:build darwin && cgo

package permissions

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>

static int axTrusted(Boolean prompt) {
    CFMutableDictionaryRef opts = CFDictionaryCreateMutable(NULL, 0, NULL, NULL);
    CFDictionarySetValue(opts, kAXTrustedCheckOptionPrompt, prompt ? kCFBooleanTrue : kCFBooleanFalse);
    Boolean trusted = AXIsProcessTrustedWithOptions(opts);
    CFRelease(opts);
    return trusted ? 1 : 0;
}
*/
import "C"

// HasAccessibility reports whether the process may post input events.
func HasAccessibility() bool {
	return C.axTrusted(0) != 0
}

// RequestAccessibility prompts for Accessibility access and reports
// whether it is already granted.
func RequestAccessibility() bool {
	return C.axTrusted(1) != 0
}
