// Package archive computes deterministic, collision-free destinations
// for classified files and places them into the organized tree: the
// category routing table, the per-directory sequence counter, target
// naming by classification, the year/month tree lifecycle, and the
// copy/move primitive.
package archive
