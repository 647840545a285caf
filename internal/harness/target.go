package harness

import (
	"fmt"

	"github.com/roach88/baseline/internal/compare"
	"github.com/roach88/baseline/internal/script"
	"github.com/roach88/baseline/internal/toolkit"
)

// Conventional binding names, in lookup order.
const (
	NameInteractor   = "iren"
	NameRenderWindow = "renWin"
	NameViewer       = "viewer"
	NameImageWindow  = "imgWin"
)

var targetNames = []string{NameInteractor, NameRenderWindow, NameViewer, NameImageWindow}

// windowOwner is a viewer or image window: it renders and owns a window.
type windowOwner interface {
	Render() error
	RenderWindow() *toolkit.RenderWindow
}

// locateTarget returns the first conventional binding holding a value of
// the expected type. A binding of the wrong type does not match. Viewers
// and image windows are rendered before capture. found is false when no
// name matched; err is a render failure of the matched target.
func locateTarget(env *script.Env) (name string, target compare.Target, found bool, err error) {
	for _, n := range targetNames {
		v, ok := env.Lookup(n)
		if !ok {
			continue
		}

		switch n {
		case NameInteractor:
			if it, ok := v.(toolkit.Interactor); ok {
				return n, compare.WindowTarget{Window: it.RenderWindow(), K: compare.KindRenderWindow}, true, nil
			}
		case NameRenderWindow:
			if win, ok := v.(*toolkit.RenderWindow); ok {
				return n, compare.WindowTarget{Window: win, K: compare.KindRenderWindow}, true, nil
			}
		case NameViewer, NameImageWindow:
			owner, ok := v.(windowOwner)
			if !ok {
				continue
			}
			kind := compare.KindViewer
			if n == NameImageWindow {
				kind = compare.KindImageWindow
			}
			t := compare.WindowTarget{Window: owner.RenderWindow(), K: kind}
			if err := owner.Render(); err != nil {
				return n, t, true, fmt.Errorf("render %s: %w", n, err)
			}
			return n, t, true, nil
		}
	}
	return "", nil, false, nil
}
