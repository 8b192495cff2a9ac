// Package datestamp recovers a trustworthy capture date for a media
// file from two independent metadata sources, classifies how reliable
// that date is, and renders the short (YYYY/MM) and long
// (YYYYMMDD_HHMMSS) forms the archive layout is built from.
package datestamp
