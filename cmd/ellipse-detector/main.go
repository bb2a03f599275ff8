package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"ellipse-detector/internal/app"
	"ellipse-detector/internal/config"
)

func main() {
	configureRuntime()

	cfg, err := config.Load(os.Args[1:], ".env", config.OSLookup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// configureRuntime tunes the GC for large short-lived image buffers.
func configureRuntime() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(200)
	}
}
