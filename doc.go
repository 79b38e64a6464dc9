// Package slark decodes and plays animated images.
//
// # Overview
//
// slark opens GIF, animated WebP, PNG/APNG and JPEG files, decodes them on a
// background goroutine per image and plays them back through a View that a
// render loop ticks with the elapsed wall-clock time. Frames are handed over
// through a small bounded channel, cached as gg image buffers and looped.
//
// # Quick Start
//
//	import "github.com/gogpu/slark"
//
//	anim, err := slark.Open("cat.gif")
//	if err != nil {
//		// anim is still usable: it plays as an empty animation.
//		log.Println(err)
//	}
//	defer anim.Close()
//
//	dc := gg.NewContext(512, 512)
//	for range time.Tick(16 * time.Millisecond) {
//		anim.Tick(16 * time.Millisecond)
//		if img, ok := anim.CurrentFrameHandle(); ok {
//			dc.DrawImage(img, 0, 0)
//		}
//	}
//
// # Formats
//
// The decoder is chosen from the file extension, case-sensitively: gif,
// webp, png, jpg and jpeg. Anything else is reported as ErrUnsupportedFormat.
//
//   - GIF frames are composited onto the logical screen with disposal.
//   - Animated WebP frames are blended and disposed onto the canvas.
//   - APNG frames honor offsets, blend and dispose operations.
//   - JPEG and plain PNG produce a single frame with zero delay.
//
// # Timing
//
// Each View keeps an accumulated delay. A frame adds its delay when it becomes
// current, and Tick subtracts the elapsed time, advancing while the balance is
// not positive. Large intervals skip intermediate frames; WithPainter still
// sees each one.
//
// # Logging
//
// Logging is silent by default. Use SetLogger to route decode diagnostics to
// a slog.Logger.
package slark
