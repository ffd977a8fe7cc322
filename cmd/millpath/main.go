// MillPath is a toolpath planner and G-code generator for contouring
// parts on a CNC table with risers.
//
// Build:
//   go build -o millpath ./cmd/millpath
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o millpath.exe ./cmd/millpath
//   GOOS=darwin  GOARCH=arm64 go build -o millpath-darwin ./cmd/millpath
//
// Usage:
//   millpath tool add -name T1 -diameter 40 -inserts 4 -number 1 -length 80
//   millpath part add -name 1234 -x 100 -y 80 -depth 2.5 -tool T1
//   millpath generate -part 1234 -o 1234.nc
//   millpath menu

package main

import (
	"os"

	"github.com/piwi3910/MillPath/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
