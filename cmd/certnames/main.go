// Copyright (C) 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"golang.org/x/sync/errgroup"

	"software.sslmate.com/src/certnames"
	"software.sslmate.com/src/certnames/sequencer"
)

var programName = os.Args[0]
var Version = "unknown"
var Source = "unknown"

func certnamesVersion() (string, string) {
	if buildinfo, ok := debug.ReadBuildInfo(); ok && strings.HasPrefix(buildinfo.Main.Version, "v") {
		return strings.TrimPrefix(buildinfo.Main.Version, "v"), buildinfo.Main.Path
	} else {
		return Version, Source
	}
}

func defaultEncoding() string {
	if envVar := os.Getenv("CERTNAMES_ENCODING"); envVar != "" {
		return envVar
	} else {
		return "auto"
	}
}

type hostList []string

func (list *hostList) String() string {
	return strings.Join(*list, ",")
}

func (list *hostList) Set(value string) error {
	*list = append(*list, value)
	return nil
}

type options struct {
	encoding certnames.Encoding
	names    bool
	match    []string
	check    bool
	verbose  bool
	jobs     int
}

type result struct {
	path  string
	names certnames.NameSet
	diags []certnames.Diagnostic
	err   error
}

func readCertFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	} else {
		return os.ReadFile(path)
	}
}

func processFile(path string, encoding certnames.Encoding) *result {
	res := &result{path: path}
	certBytes, err := readCertFile(path)
	if err != nil {
		res.err = fmt.Errorf("error reading certificate: %w", err)
		return res
	}
	res.names, res.diags, res.err = certnames.ExtractNamesFromBytes(certBytes, encoding)
	return res
}

// report writes the output for one certificate and returns false if any
// -match host is not covered by it.
func (opts *options) report(w io.Writer, res *result, prefix string) bool {
	if opts.verbose {
		for _, diag := range res.diags {
			log.Printf("%s: %s", res.path, diag)
		}
	}

	if opts.names {
		for _, name := range res.names {
			fmt.Fprintf(w, "%s%s\n", prefix, name.Value)
		}
	}

	if opts.check {
		for _, diag := range certnames.CheckNames(res.names.Values()) {
			fmt.Fprintf(w, "%swarning: %s\n", prefix, diag)
		}
	}

	if len(opts.match) == 0 {
		if !opts.names {
			fmt.Fprintf(w, "%s%s\n", prefix, certnames.CompileNameSet(res.names))
		}
		return true
	}

	pattern := certnames.CompileNameSet(res.names)
	allMatched := true
	for _, host := range opts.match {
		if pattern.MatchHostname(host) {
			fmt.Fprintf(w, "%s%s: yes\n", prefix, host)
			if name, ok := res.names.Covering(host); ok && opts.verbose {
				log.Printf("%s: %s is covered by %s %q", res.path, host, name.Source, name.Value)
			}
		} else {
			fmt.Fprintf(w, "%s%s: no\n", prefix, host)
			allMatched = false
		}
	}
	return allMatched
}

// run processes paths in parallel and reports on them in order.  Errors
// are written to stderr as they are reported and also returned, joined.
func run(ctx context.Context, opts *options, paths []string, stdout, stderr io.Writer) (bool, error) {
	jobs := max(opts.jobs, 1)
	results := sequencer.New[*result](0, uint64(jobs))

	var (
		allMatched = true
		errs       []error
	)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs + 1)
	group.Go(func() error {
		for range paths {
			res, err := results.Next(ctx)
			if err != nil {
				return err
			}
			if res.err != nil {
				fmt.Fprintf(stderr, "%s: %s: %s\n", programName, res.path, res.err)
				errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
				continue
			}
			var prefix string
			if len(paths) > 1 {
				prefix = res.path + ": "
			}
			if !opts.report(stdout, res, prefix) {
				allMatched = false
			}
		}
		return nil
	})
	for i, path := range paths {
		group.Go(func() error {
			return results.Add(ctx, uint64(i), processFile(path, opts.encoding))
		})
	}
	if err := group.Wait(); err != nil {
		return false, err
	}
	return allMatched, errors.Join(errs...)
}

func main() {
	version, source := certnamesVersion()

	var flags struct {
		encoding string
		names    bool
		match    hostList
		check    bool
		jobs     int
		verbose  bool
		version  bool
	}

	flag.StringVar(&flags.encoding, "encoding", defaultEncoding(), "Certificate encoding: auto, pem, or der (default from $CERTNAMES_ENCODING)")
	flag.BoolVar(&flags.names, "names", false, "Print the certificate's names instead of the pattern")
	flag.Var(&flags.match, "match", "Report whether `HOST` is covered by the certificate (may be repeated)")
	flag.BoolVar(&flags.check, "check", false, "Warn about names that are unlikely to work as intended")
	flag.IntVar(&flags.jobs, "jobs", runtime.GOMAXPROCS(0), "Number of certificates to process in parallel")
	flag.BoolVar(&flags.verbose, "verbose", false, "Log certificate entries which are not usable names")
	flag.BoolVar(&flags.version, "version", false, "Print version and exit")
	flag.Parse()

	log.SetPrefix(programName + ": ")
	log.SetFlags(0)

	if flags.version {
		fmt.Fprintf(os.Stdout, "certnames version %s (%s)\n", version, source)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] -|CERTFILE...\n", programName)
		fmt.Fprintf(os.Stderr, "Purpose: print a regular expression matching the names of each certificate.\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if len(args) > 1 {
		for _, arg := range args {
			if arg == "-" {
				fmt.Fprintf(os.Stderr, "%s: '-' must be the only argument when used\n", programName)
				os.Exit(2)
			}
		}
	}

	encoding, err := certnames.ParseEncoding(flags.encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", programName, err)
		os.Exit(2)
	}
	if flags.jobs < 1 {
		fmt.Fprintf(os.Stderr, "%s: -jobs must be at least 1\n", programName)
		os.Exit(2)
	}

	opts := &options{
		encoding: encoding,
		names:    flags.names,
		match:    flags.match,
		check:    flags.check,
		verbose:  flags.verbose,
		jobs:     flags.jobs,
	}
	allMatched, err := run(context.Background(), opts, args, os.Stdout, os.Stderr)
	if err != nil || !allMatched {
		os.Exit(1)
	}
	os.Exit(0)
}
