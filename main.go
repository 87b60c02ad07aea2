package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tphakala/datanorm/cmd"
	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/buildinfo"
)

// version and buildDate are set with -ldflags at build time
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	os.Exit(run())
}

func run() int {
	appCtx := app.New(buildinfo.NewContext(version, buildDate))
	rootCmd := cmd.RootCommand(appCtx)

	err := rootCmd.ExecuteContext(context.Background())
	if closeErr := appCtx.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
