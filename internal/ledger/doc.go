// Package ledger persists the file inventory and the side ledgers
// (duplicate candidates, year-range audit, placement failures) in a
// SQLite database. The tidy stage validates the inventory's exact
// column set before consuming it so schema drift aborts the run at the
// boundary instead of surfacing later.
package ledger
