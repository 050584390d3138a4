//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"

	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// Container image constants.
const (
	dockerImageName = "bluegreen"
	dockerfilePath  = "Dockerfile"
)

// containerRuntime returns "podman" or "docker" if a working runtime
// is available, or "" if neither is usable. It checks both that the
// binary exists on PATH and that it can connect to its daemon/machine.
func containerRuntime() string {
	for _, name := range []string{"podman", "docker"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if exec.Command(name, "info").Run() != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s found on PATH but not usable (is the daemon/machine running?)\n", name)
			continue
		}
		return name
	}
	return ""
}

// imageRef returns the image reference for a variant preset, e.g.
// bluegreen:blue.
func imageRef(preset string) string {
	return dockerImageName + ":" + preset
}

// buildImage builds one variant image from the root Dockerfile.
func buildImage(rt, preset string) error {
	fmt.Fprintf(os.Stderr, "Building %s...\n", imageRef(preset))
	cmd := exec.Command(rt, "build",
		"-t", imageRef(preset),
		"-f", dockerfilePath,
		"--build-arg", "VARIANT="+preset,
		".")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Image builds one container image per variant preset.
func Image() error {
	mg.Deps(Test)
	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no usable container runtime (tried podman, docker)")
	}
	for _, preset := range types.VariantNames() {
		if err := buildImage(rt, preset); err != nil {
			return fmt.Errorf("building %s: %w", imageRef(preset), err)
		}
	}
	return nil
}
