// Command glicolverb runs the signal core outside a plugin host.
//
// Usage:
//
//	glicolverb gen -o guitar.wav                              # E minor test arpeggio
//	glicolverb gen -o tone.wav -tone 1000                     # sine test tone
//	glicolverb render -script fx.lua -block 256 in.wav out.wav
//	glicolverb render -set delay_time=100ms -set dry_wet=100% in.wav out.wav
//	glicolverb params -load session.state                     # inspect a saved session
//	glicolverb play -script fx.lua in.wav                     # edit fx.lua while it plays
//
// Inputs may be mono or stereo. render and play run the router with the Lua
// engine. play loops the input
// through the default audio device and reloads the script whenever the file
// changes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}

	switch args[0] {
	case "gen":
		return runGen(args[1:], stdout, stderr)
	case "render":
		return runRender(args[1:], stdout, stderr)
	case "play":
		return runPlay(args[1:], stdout, stderr)
	case "params":
		return runParams(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	}

	usage(stderr)
	return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [options] [files]\n\n", os.Args[0])
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  gen     write a guitar arpeggio or sine test file\n")
	fmt.Fprintf(w, "  render  process a WAV file offline\n")
	fmt.Fprintf(w, "  play    loop a WAV file through the audio device with live script reload\n")
	fmt.Fprintf(w, "  params  list parameters with their current values and ranges\n")
	fmt.Fprintf(w, "\nRun '%s <command> -h' for command options.\n", os.Args[0])
}

// newFlagSet creates a subcommand flag set that reports errors instead of
// exiting.
func newFlagSet(name, args string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s %s [options] %s\n\nOptions:\n", os.Args[0], name, args)
		fs.PrintDefaults()
	}
	return fs
}
