// Package secret resolves credentials referenced from configuration.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable providers created by name (see Provider and Registry)
//   - Resolving references inside configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:GEMINI_API_KEY
//   - File value:  secretref:file:gemini_api_key
//   - Inline use:  redis://:secretref:env:REDIS_PASSWORD@cache:6379/0
//
// Built-in providers are "env", which reads an environment variable, and
// "file", which reads a file under a base directory such as /run/secrets.
package secret
