//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// enableANSI is a no-op: Unix terminals understand ANSI escapes.
func enableANSI() {}

// registerSignals relays interrupt and termination requests so the crawl can
// stop and still save its partial report.
func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
}
