// Package annotate provides the public API for embedding the go-annotate
// screen annotation overlay. It wraps the drawing engine, the overlay
// window and configuration hot reload behind one lifecycle interface.
//
// # Basic Usage
//
// Create an overlay from a configuration file and run it from the main
// goroutine:
//
//	o, err := annotate.New(config.DefaultPath(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := o.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// The overlay starts inactive: pointer input passes through to the desktop
// until the hotkey (F9 by default) is pressed.
//
// # Configuration Sources
//
//   - Disk file: Use [New] to load from a filesystem path
//   - Embedded FS: Use [NewFromFS] to load from an [io/fs.FS]
//   - io.Reader: Use [NewFromReader] for dynamic configurations
//
// Disk configurations are watched and reloaded when they change. Tools,
// bindings, switch colors and opacity take effect without a restart.
//
// # Headless Mode
//
// A headless overlay draws on an in-memory canvas. Input is fed through
// [Canvas] and the result read back with [Canvas.Snapshot]:
//
//	o, _ := annotate.NewFromReader(strings.NewReader(cfg), annotate.FormatLua,
//		&annotate.Options{Headless: true, Width: 640, Height: 480})
//	o.Start()
//	defer o.Stop()
//
//	c, _ := o.Canvas()
//	c.Press("mouse", 10, 10, 1)
//	c.Motion("mouse", 200, 120)
//	c.Release("mouse")
//	img, _ := c.Snapshot()
//
// # Error Handling
//
// Runtime errors are reported through [ErrorHandler]. The handler is called
// asynchronously; do not block in it.
package annotate
