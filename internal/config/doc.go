// Package config loads the service configuration.
//
// Values are layered in increasing order of precedence:
//
//	1. Default() values
//	2. A YAML file (config.yaml or configs/config.yaml, or an explicit path)
//	3. Environment variables prefixed with REPORTD_
//
// Nested sections map to underscored names, for example:
//
//	REPORTD_SERVER_PORT=8080
//	REPORTD_STORE_DRIVER=memory
//	REPORTD_STORE_FIXTURES_PATH=fixtures/sample.yaml
//	REPORTD_EXPORT_ROW_LIMIT=100
//	REPORTD_EXPORT_DOCUMENT_ENGINE=pdf
//
// Load validates the result and normalizes case-insensitive enums.
package config
