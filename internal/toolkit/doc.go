// Package toolkit is the small software rendering toolkit that pipeline
// scripts drive.
//
// It provides just enough of a visualization engine for the regression
// harness to have real frame buffers to compare:
//
//   - RenderWindow: a frame buffer with a background color and a list of
//     actors, rendered on demand and captured as *image.RGBA
//   - Actors: filled polygons, rectangles and circles, seeded point clouds,
//     and images
//   - Viewer and ImageWindow: windows that display an input image
//   - Interactor: the event-loop entry point scripts call once their
//     pipeline is built
//
// # Interactors
//
// Interactors are never constructed directly by scripts. The caller supplies
// an InteractorFactory, which lets the harness substitute a batch
// implementation whose Start returns immediately.
//
// # Determinism
//
// Rendering is a pure function of the window size, background and actor
// list. Actors that need randomness take their points from a caller-seeded
// source at construction time, so two renders of the same pipeline produce
// byte-identical frames.
package toolkit
