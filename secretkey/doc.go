// Package secretkey resolves the key used to decrypt sealed env files.
//
// In production only the environment variable is consulted. Otherwise a
// `_secret.key` file in the working directory takes precedence, read verbatim.
// The resolved key must be exactly 64 characters.
//
// Example:
//
//	key, err := secretkey.Resolve(secretkey.Options{Production: secretkey.IsProduction()})
package secretkey
