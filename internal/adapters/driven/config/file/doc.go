// Package file loads application configuration from a TOML file.
//
// Configuration lives at ~/.ragchat/config.toml by default and can be
// relocated with the --config flag. A missing file is not an error:
// every field has a default suitable for a local LM Studio setup.
package file
