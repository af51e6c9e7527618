// Command webtest submits a website to a running analysis proxy and prints
// the scores.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/abdorenouni/WEB-TESTER/internal/client"
	"github.com/abdorenouni/WEB-TESTER/internal/platform/errs"
)

func main() {
	server := flag.String("server", envOr("WEBTEST_SERVER", "http://localhost:8080"), "analysis proxy base URL")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: webtest [flags] <url>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := client.New(*server).Analyze(ctx, flag.Arg(0))
	if err != nil {
		var appErr *errs.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintf(os.Stderr, "analysis failed: %s\n", appErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		}
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Report); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(os.Stdout, res)
}

func printReport(w io.Writer, res *client.Result) {
	r := res.Report
	fmt.Fprintf(w, "%s\n\n", res.URL)
	fmt.Fprintf(w, "  performance    %3d\n", r.Performance)
	fmt.Fprintf(w, "  security       %3d\n", r.Security)
	fmt.Fprintf(w, "  accessibility  %3d\n", r.Accessibility)
	fmt.Fprintf(w, "  seo            %3d\n", r.SEO)

	if len(r.Issues) > 0 {
		fmt.Fprintln(w, "\nissues:")
		for _, is := range r.Issues {
			if is.Count != nil {
				fmt.Fprintf(w, "  [%s] %s (x%d)\n", is.Type, is.Message, *is.Count)
				continue
			}
			fmt.Fprintf(w, "  [%s] %s\n", is.Type, is.Message)
		}
	}

	fmt.Fprintf(w, "\n%s\n", r.Summary)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
