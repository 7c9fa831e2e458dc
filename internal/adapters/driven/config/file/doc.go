// Package file loads harvest configuration from the local filesystem.
//
// Two sources combine into a runnable setup:
//   - Config: TOML file with repository, pacing and output settings
//   - Credentials: GitHub tokens from the environment or a .env file
//
// Tokens never live in the TOML file; they stay in the environment so
// configuration can be committed without leaking secrets.
package file
