// Command monitor is the re-execution half of root-cause analysis:
// it spawns a target binary under ptrace, places breakpoints at
// every candidate predicate address, single-steps through the run
// recording which predicates fire, and writes the fire order to a
// JSON file.
//
// Usage:
//
//	monitor <out-file> <predicate-file> <timeout-seconds> <target-binary> [target-args...]
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/aurora/monitor"
	"github.com/sarchlab/aurora/predicate"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("monitor failed", slog.String("err", err.Error()))
		atexit.Exit(1)
	}
	// Exit through atexit so the registered inferior cleanup runs on
	// the normal path too.
	atexit.Exit(0)
}

func run(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: monitor <out-file> <predicate-file> <timeout-seconds> <target-binary> [target-args...]")
	}

	outFile := args[0]
	predicateFile := args[1]
	timeoutSeconds, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("parse timeout: %w", err)
	}
	target := args[3]
	targetArgs := args[4:]

	predicates, err := loadPredicates(predicateFile)
	if err != nil {
		return err
	}

	pid, err := monitor.Spawn(target, targetArgs)
	if err != nil {
		return err
	}
	atexit.Register(func() { _ = killQuietly(pid) })

	session, err := monitor.NewSession(pid, predicates, slog.Default())
	if err != nil {
		return fmt.Errorf("set up monitor session: %w", err)
	}

	ranking := session.Run(time.Duration(timeoutSeconds) * time.Second)

	// The parent relies on the output file existing iff at least one
	// predicate fired during this run.
	if len(ranking) == 0 {
		return nil
	}
	return writeRanking(outFile, ranking)
}

func loadPredicates(path string) ([]predicate.Serialized, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var predicates []predicate.Serialized
	if err := json.Unmarshal(b, &predicates); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return predicates, nil
}

func writeRanking(path string, ranking []uint64) error {
	b, err := json.Marshal(ranking)
	if err != nil {
		return fmt.Errorf("marshal ranking: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func killQuietly(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
