// Package config loads, normalizes, and validates ciff configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CIFF_ASSETS_DIR and CIFF_BANK_PATH. The Config type centralizes the model
// asset location, ranking knobs, output toggles, and logging settings so the
// prediction pipeline is handed one explicit value per invocation.
package config
