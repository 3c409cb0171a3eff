// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract runs batch extraction over notes/ into output/extracted/.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "batch", "--metrics-file", "output/index/semex.prom")
}

// Index ingests output/extracted/ into the result store.
func Index() error {
	mg.Deps(Extract)
	return sh.RunV(binPath(), "store", "index")
}
