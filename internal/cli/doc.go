// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. Flag
// defaults come from GRIDWALK_* environment variables, optionally loaded
// from a .env file in the working directory.
package cli
