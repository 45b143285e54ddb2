// Command tether-log views and analyzes connection event log files.
//
// Event logs are created by configuring the initiator with a FileLogger
// (the event_log_file setting in the YAML configuration).
//
// Usage:
//
//	tether-log <command> [flags] <file.cbor>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	tether-log view events.cbor
//
//	# View only failed connect attempts
//	tether-log view -category error events.cbor
//
//	# Export to JSONL
//	tether-log export -o events.jsonl events.cbor
//
//	# Show statistics
//	tether-log stats events.cbor
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tetherlink/tether-go/pkg/log"
)

const usage = `tether-log - Connection Event Log Analyzer

Usage:
  tether-log <command> [flags] <file.cbor>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL
  stats    Show statistics about the log file

Use "tether-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func parseFilter(fs *flag.FlagSet) (log.Filter, error) {
	category := fs.Lookup("category").Value.String()
	connID := fs.Lookup("conn-id").Value.String()
	timeStart := fs.Lookup("time-start").Value.String()
	timeEnd := fs.Lookup("time-end").Value.String()

	var filter log.Filter
	filter.ConnectionID = connID

	if category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if timeStart != "" {
		t, err := time.Parse(time.RFC3339, timeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid -time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if timeEnd != "" {
		t, err := time.Parse(time.RFC3339, timeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid -time-end: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

func parseCategory(s string) (log.Category, error) {
	switch s {
	case "info":
		return log.CategoryInfo, nil
	case "attempt":
		return log.CategoryAttempt, nil
	case "connected":
		return log.CategoryConnected, nil
	case "error":
		return log.CategoryError, nil
	case "state":
		return log.CategoryState, nil
	default:
		return 0, fmt.Errorf("unknown category %q (info, attempt, connected, error, state)", s)
	}
}

func filterFlags(fs *flag.FlagSet) {
	fs.String("category", "", "Filter by category (info, attempt, connected, error, state)")
	fs.String("conn-id", "", "Filter by connection ID")
	fs.String("time-start", "", "Filter by start time (RFC3339)")
	fs.String("time-end", "", "Filter by end time (RFC3339)")
}

func openReader(fs *flag.FlagSet) *log.Reader {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := parseFilter(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reader, err := log.NewFilteredReader(fs.Arg(0), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return reader
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tether-log view - View log file in human-readable format

Usage:
  tether-log view [flags] <file.cbor>

Flags:
`)
		fs.PrintDefaults()
	}
	filterFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	reader := openReader(fs)
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printEvent(os.Stdout, event)
	}
}

func printEvent(w io.Writer, e log.Event) {
	fmt.Fprintf(w, "%s %-9s", e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), e.Category)
	if e.RemoteAddr != "" {
		fmt.Fprintf(w, " %s", e.RemoteAddr)
	}
	if e.ConnectionID != "" {
		fmt.Fprintf(w, " conn=%s", shortID(e.ConnectionID))
	}
	if e.Message != "" {
		fmt.Fprintf(w, " %s", e.Message)
	}
	switch {
	case e.Attempt != nil:
		fmt.Fprintf(w, " failures=%d", e.Attempt.FailureCount)
		if e.Attempt.NextRetry != 0 {
			fmt.Fprintf(w, " next_retry=%s", e.Attempt.NextRetry)
		}
	case e.StateChange != nil:
		fmt.Fprintf(w, " %s -> %s", e.StateChange.OldState, e.StateChange.NewState)
		if e.StateChange.Reason != "" {
			fmt.Fprintf(w, " (%s)", e.StateChange.Reason)
		}
	case e.Error != nil:
		fmt.Fprintf(w, " err=%q network=%t", e.Error.Message, e.Error.Network)
	}
	fmt.Fprintln(w)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tether-log export - Export log file to JSONL

Usage:
  tether-log export [flags] <file.cbor>

Flags:
`)
		fs.PrintDefaults()
	}
	output := fs.String("o", "", "Output file (default: stdout)")
	filterFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	reader := openReader(fs)
	defer reader.Close()

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := enc.Encode(exportRecord(event)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// exportRecord flattens an event into a JSON-friendly map.
func exportRecord(e log.Event) map[string]any {
	rec := map[string]any{
		"timestamp": e.Timestamp.Format(time.RFC3339Nano),
		"category":  e.Category.String(),
	}
	if e.ConnectionID != "" {
		rec["connection_id"] = e.ConnectionID
	}
	if e.RemoteAddr != "" {
		rec["remote_addr"] = e.RemoteAddr
	}
	if e.LocalAddr != "" {
		rec["local_addr"] = e.LocalAddr
	}
	if e.Message != "" {
		rec["message"] = e.Message
	}
	switch {
	case e.Attempt != nil:
		rec["failure_count"] = e.Attempt.FailureCount
		if e.Attempt.NextRetry != 0 {
			rec["next_retry"] = e.Attempt.NextRetry.String()
		}
	case e.StateChange != nil:
		rec["old_state"] = e.StateChange.OldState
		rec["new_state"] = e.StateChange.NewState
		if e.StateChange.Reason != "" {
			rec["reason"] = e.StateChange.Reason
		}
	case e.Error != nil:
		rec["error"] = e.Error.Message
		rec["network"] = e.Error.Network
		if e.Error.Target != "" {
			rec["target"] = e.Error.Target
		}
	}
	return rec
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tether-log stats - Show statistics about the log file

Usage:
  tether-log stats <file.cbor>

`)
	}
	filterFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	reader := openReader(fs)
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	byCategory := map[log.Category]int{}
	byTarget := map[string]int{}
	var first, last time.Time
	for i, e := range events {
		byCategory[e.Category]++
		if e.RemoteAddr != "" {
			byTarget[e.RemoteAddr]++
		}
		if i == 0 || e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}

	fmt.Printf("Events: %d\n", len(events))
	if len(events) > 0 {
		fmt.Printf("Time range: %s .. %s (%s)\n",
			first.Format(time.RFC3339), last.Format(time.RFC3339), last.Sub(first).Round(time.Second))
	}
	fmt.Println("\nBy category:")
	for _, c := range []log.Category{log.CategoryInfo, log.CategoryAttempt, log.CategoryConnected, log.CategoryError, log.CategoryState} {
		if n := byCategory[c]; n > 0 {
			fmt.Printf("  %-9s %d\n", c, n)
		}
	}
	if len(byTarget) > 0 {
		fmt.Println("\nBy target:")
		for addr, n := range byTarget {
			fmt.Printf("  %-30s %d\n", addr, n)
		}
	}
}
