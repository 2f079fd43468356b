// Package config loads genops configuration.
//
// Values come from, in increasing precedence: defaults registered in code,
// an optional YAML file, and GENOPS_ environment variables where nested
// keys join with underscores (GENOPS_SCHEDULER_MIN_INTERVAL,
// GENOPS_STORE_DRIVER). Credential fields are then resolved through
// package secret, so they may hold ${ENV} expansions or secretref:
// references instead of literal values.
package config
