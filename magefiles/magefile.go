//go:build mage

// Package main provides build targets for the bluegreen project using Mage.
//
// Usage:
//
//	mage build          Compile bluegreen binary to bin/
//	mage test           Run all tests
//	mage testRace       Run all tests with the race detector
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install bluegreen to GOPATH/bin
//	mage image          Build the blue and green container images
//	mage stats          Print Go LOC and documentation word counts
package main
