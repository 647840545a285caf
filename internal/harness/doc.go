// Package harness runs a pipeline script as an image regression test.
//
// A run loads the script, executes it with the batch interactor stand-in
// installed (unless interactive), finds the render target among the
// conventional bindings, and hands it to the comparator. Every outcome maps
// to PASSED or FAILED, and FAILED to exit status 1.
//
// # Run Algorithm
//
//  1. Seed the interpreter's random source (DefaultSeed unless set)
//  2. Install the stand-in unless -I was given
//  3. Load the script
//  4. Prepend the script's directory to the search path
//  5. Execute with __name__ = "__main__", argv and data_root bound
//  6. A script failure prints its traceback and fails the run
//  7. Steps 2 and 4 are released on every return path
//  8. A script with a top-level main block validates itself
//  9. Otherwise locate the target (iren, renWin, viewer, imgWin) and compare
//     against -V with the resolved threshold
//
// # Shared State
//
// The search path and the interactor factory are the only state a run
// changes. The prepended script directory and the factory are restored
// before Run returns, so a Harness can run many scripts in one process.
// Directories a script appends itself stay on the search path.
package harness
