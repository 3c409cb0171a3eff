// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

// Package main contains Mage build targets for semex developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI defaults point at.
var projectDirs = []string{
	"dictionaries",
	"notes",
	"output/extracted",
	"output/index",
}

const (
	binDir  = "bin"
	binName = "semex"
	cmdPkg  = "./cmd/semex"
)

// Init creates the project directory structure and a default semex.yaml.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat("semex.yaml"); os.IsNotExist(err) {
		mg.Deps(Build)
		if err := sh.RunV(binPath(), "config", "init"); err != nil {
			return err
		}
	}
	fmt.Println("Project directories initialized.")
	return nil
}

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	if err := sh.RunV("go", "build", "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath())
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Stats prints Go production and test line counts per top-level directory.
func Stats() error {
	counts := map[string][2]int{}
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" || d.Name() == binDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		top := strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
		c := counts[top]
		if strings.HasSuffix(path, "_test.go") {
			c[1] += n
		} else {
			c[0] += n
		}
		counts[top] = c
		return nil
	})
	if err != nil {
		return err
	}

	var prod, test int
	for _, dir := range []string{"cmd", "internal", "pkg", "magefiles"} {
		c := counts[dir]
		fmt.Printf("%-10s  production: %6d  tests: %6d\n", dir, c[0], c[1])
		prod += c[0]
		test += c[1]
	}
	fmt.Printf("%-10s  production: %6d  tests: %6d\n", "total", prod, test)
	return nil
}

// countLines counts non-blank lines in a file.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
