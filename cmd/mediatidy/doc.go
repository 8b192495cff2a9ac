// Command mediatidy recovers capture dates for photo and video
// collections and files them into an organized archive tree.
//
// A run has two stages: collect scans a source tree into the inventory
// ledger, tidy consumes the ledger and builds the output tree. The
// report subcommands inspect the ledgers afterwards.
package main
