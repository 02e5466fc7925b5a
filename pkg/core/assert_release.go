//go:build !debug
// +build !debug

package core

// DebugAssertions is true when the package is built with -tags debug.
const DebugAssertions = false

// NaN vectors pass through release builds untouched.
func assertNotNaN(Vec3) {}
