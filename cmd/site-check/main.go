// Package main provides a pre-upload checker for static sites. It runs the
// validation and HTML lint stages of the deploy pipeline without touching
// AWS, so it can gate CI on a broken build before credentials ever come
// into play.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Shri19-web/staticwebsite/site"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("site-check", flag.ExitOnError)
	source := fs.String("source", ".", "Root of the site to check")
	index := fs.String("index", "index.html", "Entry file that must exist at the source root")
	strict := fs.Bool("strict", false, "Treat HTML warnings as errors")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := site.Validate(*source, *index); err != nil {
		return err
	}

	warnings, err := site.Lint(*source)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	if *strict && len(warnings) > 0 {
		return fmt.Errorf("%d HTML warnings", len(warnings))
	}

	fmt.Printf("%s looks deployable (%d warnings)\n", *source, len(warnings))
	return nil
}
