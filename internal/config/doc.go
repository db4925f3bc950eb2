// Package config resolves the run settings: resource limits, decoder
// program overrides, and the handler mapping file location.
//
// Resolution order is defaults, then the optional settings file, then
// the environment — later layers override earlier ones. The settings
// file may be YAML (unpack.yaml) or JSONC (unpack.jsonc, JSON with
// comments, stripped with github.com/tidwall/jsonc before parsing with
// the standard encoding/json).
package config
