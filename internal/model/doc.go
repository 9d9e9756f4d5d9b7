// Package model defines the data passed between linkex components.
//
// A Run describes one pass of the extraction pipeline over one input:
// where the text came from, how it was configured, and the links that
// were finally emitted. The same type is stored in and loaded from the
// history database.
package model
