// The main package for the market-search-scraper executable.
package main

import (
	"github.com/JakeFAU/market-search-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
