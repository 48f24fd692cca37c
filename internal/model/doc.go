package model

// Package model defines domain data structures shared across the app: playlist
// entries, download tasks, batch events, and status enums. Structures are plain
// values so the UI, the CLI and the orchestrator can pass them around freely.
