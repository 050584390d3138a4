//go:build mage

package main

import "github.com/magefile/mage/sh"

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs all tests with the race detector. The store and server
// tests hammer the shared document from many goroutines.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}
