// Command catalog prepares the car catalog: it deduplicates scraped
// listings, enriches them with structured attributes and summaries, and
// indexes the result into the car store.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
