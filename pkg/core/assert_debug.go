//go:build debug
// +build debug

package core

import "fmt"

// DebugAssertions is true when the package is built with -tags debug.
const DebugAssertions = true

func assertNotNaN(v Vec3) {
	if v.IsNaN() {
		panic(fmt.Sprintf("core: NaN vector component in %+v", v))
	}
}
