//go:build darwin && cgo

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <dlfcn.h>
#include <stdlib.h>

typedef struct {
    void*  data;
    size_t size;
    int    width;
    int    height;
} ScreenShot;

// CGWindowListCreateImage is missing from the macOS 15 SDK headers but the
// symbol still ships in the CoreGraphics dylib.
typedef CGImageRef (*listCreateImageFunc)(CGRect, uint32_t, uint32_t, uint32_t);

static listCreateImageFunc lookupListCreateImage(void) {
    static listCreateImageFunc fn = NULL;
    if (!fn) {
        fn = (listCreateImageFunc)dlsym(RTLD_DEFAULT, "CGWindowListCreateImage");
    }
    return fn;
}

ScreenShot grabDisplay(CGDirectDisplayID displayID) {
    ScreenShot shot = {0};

    listCreateImageFunc fn = lookupListCreateImage();
    if (!fn) {
        return shot;
    }
    // kCGWindowListOptionOnScreenOnly, kCGNullWindowID, kCGWindowImageDefault
    CGImageRef image = fn(CGDisplayBounds(displayID), 1, 0, 0);
    if (!image) {
        return shot;
    }

    shot.width  = (int)CGImageGetWidth(image);
    shot.height = (int)CGImageGetHeight(image);
    shot.size   = (size_t)shot.width * 4 * shot.height;
    shot.data   = malloc(shot.size);
    if (!shot.data) {
        CGImageRelease(image);
        shot.size = 0;
        return shot;
    }

    CGColorSpaceRef cs = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(shot.data, shot.width, shot.height, 8,
        shot.width * 4, cs, kCGImageAlphaPremultipliedLast);
    CGContextDrawImage(ctx, CGRectMake(0, 0, shot.width, shot.height), image);
    CGContextRelease(ctx);
    CGColorSpaceRelease(cs);
    CGImageRelease(image);
    return shot;
}

void releaseScreenShot(void* data) {
    free(data);
}
*/
import "C"

import (
	"image"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
)

// Screen captures a macOS display with CoreGraphics at a fixed rate.
type Screen struct {
	displayID C.CGDirectDisplayID
	fps       int
	slot      Latest

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewScreen creates a capturer for the display at displayIndex (0 = main).
func NewScreen(displayIndex, fps int) (*Screen, error) {
	if fps <= 0 || fps > 60 {
		return nil, errors.Errorf("fps must be 1-60, got %d", fps)
	}

	var displayID C.CGDirectDisplayID
	if displayIndex == 0 {
		displayID = C.CGMainDisplayID()
	} else {
		var displays [16]C.CGDirectDisplayID
		var count C.uint32_t
		C.CGGetActiveDisplayList(16, &displays[0], &count)
		if displayIndex >= int(count) {
			return nil, errors.Errorf("display index %d out of range (have %d displays)", displayIndex, count)
		}
		displayID = displays[displayIndex]
	}

	return &Screen{displayID: displayID, fps: fps}, nil
}

func (s *Screen) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)
	return nil
}

func (s *Screen) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

func (s *Screen) Latest() (*Frame, bool) {
	return s.slot.Latest()
}

func (s *Screen) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if f := s.grab(); f != nil {
				s.slot.Put(f)
			}
		}
	}
}

func (s *Screen) grab() *Frame {
	shot := C.grabDisplay(s.displayID)
	if shot.data == nil {
		return nil
	}
	defer C.releaseScreenShot(shot.data)

	w, h := int(shot.width), int(shot.height)
	pix := make([]byte, int(shot.size))
	copy(pix, unsafe.Slice((*byte)(shot.data), len(pix)))

	return NewFrame(&image.RGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	})
}
