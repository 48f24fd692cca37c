package download

// Package download implements the batch download pipeline on top of a
// platform.Engine. A batch turns selected entries into tasks, runs at most
// MaxParallel of them at once, merges their progress into one event stream
// and reports completion exactly once.
