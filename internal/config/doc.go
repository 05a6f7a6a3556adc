// Package config loads and validates the application configuration.
//
// Configuration is layered: Default() provides the baseline, a YAML file
// (config.yaml, configs/config.yaml, or the path in QD_CONFIG_FILE)
// overrides it, and QD_-prefixed environment variables override both.
// Later layers only touch keys they actually set, so a partial YAML file
// or a single env var never resets unrelated fields.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Environment variables follow envconfig's nested naming, e.g.
// QD_SERVER_PORT, QD_MARKETDATA_BASE_URL, QD_ANALYTICS_MAX_PAIR_WORKERS.
//
// Load validates the merged result and normalizes the logging section;
// a configuration it returns is safe to hand to the rest of the system
// without further checks.
package config
