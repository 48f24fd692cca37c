package selection

// Package selection holds the per-entry selection and format choices made
// between a fetch and a download batch.
