package fetch

// Package fetch turns a playlist or video locator into an ordered list of
// selectable entries. It runs the engine in flat mode first, falls back to
// the canonical playlist URL when flat mode comes back empty, and fills in
// titles and format lists the engine left out.
