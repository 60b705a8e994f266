//go:build mage

package main

import (
	"fmt"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Digest builds the CLI and writes today's HTML digest into digests/.
func Digest() error {
	mg.Deps(Build, Init)
	out := fmt.Sprintf("digests/%s.html", time.Now().Format("2006-01-02"))
	if err := sh.RunV("./bin/paper-digest", "run", "--format", "html", "-o", out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}

// Rank builds the CLI and prints today's ranking without summaries.
func Rank() error {
	mg.Deps(Build)
	return sh.RunV("./bin/paper-digest", "rank")
}
