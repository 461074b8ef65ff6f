// +build tools

// Package tools pins the linting, documentation and test report tooling used in CI so
// that `go mod tidy` keeps them in go.mod.
package tools

import (
	_ "github.com/ains/go-test-html"
	_ "github.com/illuscio-dev/docmodule-go"
	_ "github.com/jstemmer/go-junit-report"
	_ "github.com/mgechev/revive"
	_ "golang.org/x/tools/cmd/godoc"
)
