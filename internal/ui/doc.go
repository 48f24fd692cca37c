package ui

// Package ui contains the Fyne-based desktop window of QuickYTDL. It drives the
// fetch, select and download flow: a locator is resolved by the fetcher, the
// entries are edited through the selection model, and the chosen rows are
// handed to the download orchestrator whose event stream feeds the downloads
// list and the log view. All UI strings are localized via Localization.
