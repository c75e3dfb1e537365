// Package maimemo provides a client for the notepad endpoints of the Maimemo open API.
//
// A notepad is a remote vocabulary list owned by the authenticated account. The
// client is bound to a single notepad title and exposes the four calls needed to
// keep that notepad in sync with a local word list: find, create, list words, and
// full-replace update.
//
// Refer to https://open.maimemo.com/document for the endpoint reference. Only the
// fields this package reads or writes are modelled; everything else in the
// responses is ignored.
package maimemo
