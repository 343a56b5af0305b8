// Package config loads and validates the service configuration.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: $OBV_CONFIG_FILE, or the first of config.yaml,
//	   configs/config.yaml, ../configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables follow the nesting of Config under the OBV prefix:
//
//	OBV_SERVER_PORT=8080
//	OBV_SOURCE_KIND=sheets
//	OBV_SOURCE_SPREADSHEET_ID=1AbC...
//	OBV_PIPELINE_PRESET=league
//	OBV_FILTERS_AGE_DEFAULT_MAX=30
//	OBV_LOGGING_LEVEL=debug
//
// List values are comma separated: OBV_SECURITY_ALLOWED_ORIGINS=http://a,http://b.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
