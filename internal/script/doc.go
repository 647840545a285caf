// Package script loads and executes pipeline scripts.
//
// A pipeline script is a YAML document that builds a small graph of toolkit
// objects by calling named operations and binding their results to names:
//
//	name: cone
//	threshold: 12
//	imports: [common.yaml]
//	steps:
//	  - call: renderWindow
//	    bind: renWin
//	    args: { width: 300, height: 300, background: [26, 51, 102] }
//	  - call: fill
//	    args: { window: renWin, shape: circle, center: [150, 150], radius: 80, color: [255, 128, 0] }
//	  - call: interactor
//	    bind: iren
//	    args: { window: renWin }
//	  - call: start
//	    args: { interactor: iren }
//
// # Environment
//
// Steps run against an Env, an ordered set of name bindings. The caller seeds
// it (the harness binds __name__, argv and data_root) and inspects it once
// the script returns. String arguments that name objects (window, image,
// interactor, target) are looked up in the Env.
//
// # Main block
//
// A script may carry a top-level main: list. It runs after steps, and only
// for the script being executed directly: imported helpers contribute their
// steps but never their main block. Scripts with a main block are treated as
// self-validating by the harness.
//
// # Imports
//
// Names listed under imports: are resolved through a SearchPath and executed
// (steps only) into the same Env before the importing script's own steps.
// Each helper runs at most once per execution.
//
// # Errors
//
// Every failure escaping a script is a *ScriptError carrying an error kind
// (ZeroDivisionError, IOError, AssertionError, ...), a message, and the
// chain of frames from the top-level script down to the failing step.
package script
