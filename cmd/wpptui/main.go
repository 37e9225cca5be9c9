package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/wpp-client/internal/app"
	"github.com/matheus3301/wpp-client/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	backendFlag := flag.String("backend", "", "backend URI (overrides profile and environment)")
	flag.Parse()

	active, err := profile.Load(*profileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *backendFlag != "" {
		active.Settings.BackendURI = *backendFlag
		if err := active.Settings.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "error: --backend: %v\n", err)
			os.Exit(1)
		}
	}

	fxApp := fx.New(
		app.Module(app.Params{Profile: active.Name, Settings: active.Settings}),
	)
	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fxApp.Run()
}
