package main

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/config"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and runtime settings",
		Long: `Print the patchwork build and the reactive runtime settings commands
would use here: the config file in effect, tick mode, batching, the
update circuit breaker and development checks.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(version)
				return
			}

			cfg, err := loadConfig()
			if err != nil {
				warn("config: %v (showing defaults)", err)
				cfg = config.New()
			}

			printBanner()
			fmt.Println()
			fmt.Printf("  patchwork %s (%s, built %s) %s %s/%s\n",
				version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Println()
			for _, kv := range runtimeSettings(cfg) {
				fmt.Printf("  %-12s %s\n", kv[0]+":", kv[1])
			}
			fmt.Println()
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

// runtimeSettings lists the reactive runtime configuration cfg resolves to.
func runtimeSettings(cfg *config.Config) [][2]string {
	rc := cfg.ReactiveConfig()
	source := cfg.Path()
	if source == "" {
		source = "defaults"
	}
	batching := "async"
	if !rc.Async {
		batching = "sync"
	}
	return [][2]string{
		{"Config", source},
		{"Tick mode", rc.TickMode.String()},
		{"Batching", batching},
		{"Max updates", strconv.Itoa(rc.MaxUpdateCount)},
		{"Dev checks", strconv.FormatBool(!cfg.Runtime.Production)},
	}
}
