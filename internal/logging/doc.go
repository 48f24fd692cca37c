// Package logging configures logrus for the application: console output,
// an optional rotating log file, and hooks that mirror entries into the UI.
package logging
