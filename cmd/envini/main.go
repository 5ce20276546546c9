package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kurs0n/envini-gate/internal/cli"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// orDefault mirrors cmp.Or for two strings; cmp.Or needs Go 1.22+
// and the build toolchain here is Go 1.21.
func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func main() {
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
