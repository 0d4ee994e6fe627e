package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"survivecraft.ai/internal/console"
	persistlog "survivecraft.ai/internal/persistence/log"
	"survivecraft.ai/internal/sim/tuning"
	"survivecraft.ai/internal/sim/world"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.Int64("seed", 0, "world seed (overrides world.seed from tuning when set)")
		logDir     = flag.String("log_dir", "", "write tick/audit logs under this dir (optional, replayable)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[console] ", log.LstdFlags)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		tune = tuning.Defaults()
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			tune.World.Seed = *seed
		}
	})

	w, err := world.New(world.ConfigFromTuning("console", tune))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if *logDir != "" {
		if err := tuning.Save(filepath.Join(*logDir, "tuning.yaml"), tune); err != nil {
			logger.Fatalf("save tuning: %v", err)
		}
		tl := persistlog.NewTickLogger(*logDir)
		al := persistlog.NewAuditLogger(*logDir)
		defer tl.Close()
		defer al.Close()
		w.SetTickLogger(tl)
		w.SetAuditLogger(al)
	}

	st := w.ScatterStats()
	fmt.Printf("seed %d: %d instances (%d trees skipped below water). type help for commands.\n",
		tune.World.Seed, len(st.Instances), st.TreesBelowWater)
	if err := repl(console.NewSession(w), os.Stdin, os.Stdout); err != nil {
		logger.Fatalf("read: %v", err)
	}
}

func repl(s *console.Session, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "quit", "exit":
			return nil
		}
		res, err := s.Exec(line)
		switch {
		case errors.Is(err, console.ErrUsage), errors.Is(err, console.ErrUnknownCommand),
			errors.Is(err, console.ErrAmbiguous), errors.Is(err, console.ErrNoMatch):
			fmt.Fprintln(out, err)
		case err != nil:
			fmt.Fprintln(out, "error:", err)
		default:
			fmt.Fprintln(out, res)
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}
