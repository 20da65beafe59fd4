//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var commands = []string{"bfres", "inspect", "texdump"}

type Build mg.Namespace

// Builds every command into bin/.
func (Build) All() error {
	for _, c := range commands {
		if err := buildCmd(c); err != nil {
			return err
		}
	}
	return nil
}

// Builds only the bfres importer.
func (Build) Bfres() error {
	return buildCmd("bfres")
}

// Runs the unit tests.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "./...")
}

// Runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Removes bin/.
func Clean() error {
	return sh.Rm("bin")
}

func buildCmd(name string) error {
	out := filepath.Join("bin", name)
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	fmt.Printf("Building %s...\n", out)
	return sh.RunV("go", "build", "-o", out, "./cmd/"+name)
}
