package platform

// Package platform contains OS integration and external tooling glue: the
// engine boundary and its ytdlp adapter, filesystem helpers, and OS actions
// such as opening a folder or shutting the machine down.
