// Package config provides configuration parsing for loom.
//
// The configuration is stored in loom.json, loom.yaml or loom.yml in the
// working directory. This package handles loading, saving, defaults and
// validation.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": {
//	    "sliceBudget": "5ms",
//	    "frameInterval": "16ms"
//	  },
//	  "server": {
//	    "port": 3000,
//	    "pingInterval": "30s"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "loom"
//	  },
//	  "snapshot": {
//	    "store": "redis",
//	    "redisAddr": "localhost:6379",
//	    "ttl": "24h"
//	  }
//	}
//
// Durations are Go duration strings. Unset fields take their defaults
// after decoding; Validate reports the first invalid value as E122.
package config
