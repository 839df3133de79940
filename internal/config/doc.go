// Package config provides configuration parsing for patchwork projects.
//
// The configuration is stored in patchwork.json (or patchwork.yaml) at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "runtime": {
//	    "tickMode": "microtask",
//	    "maxUpdateCount": 100
//	  },
//	  "serve": {
//	    "port": 7070,
//	    "heartbeat": "25s",
//	    "state": "./state.json",
//	    "metrics": true
//	  },
//	  "snapshot": {
//	    "store": "bolt",
//	    "path": "snapshots.db"
//	  },
//	  "log": {
//	    "level": "debug"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt := reactive.NewRuntime(cfg.ReactiveConfig())
package config
