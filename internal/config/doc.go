// Package config loads, validates and persists mediatidy's TOML
// configuration: ledger and log locations, the date-resolution tag
// slots and year window, and the archive routing table.
package config
