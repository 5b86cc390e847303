// Package main provides the entry point for the docfang CLI.
//
// docfang crawls a documentation site, extracts structured pages and saves
// an aggregated report.
//
// Usage:
//
//	docfang <platform> <base_url> <max_pages>
//	docfang sphinx https://docs.example.com/ 50 --format markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
