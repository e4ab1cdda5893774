// Package pkgconfig provides a small abstraction for reading configuration values.
//
// The application expects config values to come from a concrete implementation
// (for example Viper). Business code should depend on the Config interface so it
// stays easy to test and does not care where values come from (file, env, etc).
//
// Every key ships with a default and can be overridden through BILI_MCP_*
// environment variables, so a config file is optional. This matters for the
// stdio serve mode, where the process is spawned by an MCP client that can
// usually pass environment variables but not a working directory layout.
package pkgconfig
