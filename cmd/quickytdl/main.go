// Command quickytdl is the headless front-end of QuickYTDL: it fetches a
// playlist, selects entries and formats from flags and runs the download
// batch in the terminal.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
