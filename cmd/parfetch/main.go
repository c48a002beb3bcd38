// parfetch checks the reachability of a set of URLs in parallel.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/samber/lo"
	flag "github.com/spf13/pflag"

	"github.com/featherbread/parseq"
	"github.com/featherbread/parseq/internal/log"
)

var (
	timeout = flag.Duration("timeout", 30*time.Second, "Maximum time to wait for all checks to finish")
	verbose = flag.BoolP("verbose", "v", false, "Print successful checks along with failures")
)

func main() {
	flag.Parse()
	if *verbose {
		log.EnableVerbose()
	}

	rawURLs := lo.Uniq(flag.Args())
	if len(rawURLs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: parfetch [flags] url [url ...]")
		os.Exit(2)
	}

	targets := parseq.TryMap(slices.Values(rawURLs), func(raw string) (string, bool) {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			log.Printf("[skip]\tnot a usable URL: %s", raw)
			return "", false
		}
		return u.String(), true
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	results := parseq.NewBag[checkResult]()
	task := parseq.ForAllContext(ctx, targets, func(ctx context.Context, target string) error {
		result := check(ctx, target)
		results.Add(result)
		if result.Err != nil {
			log.Printf("[fail]\t%s: %v", result.URL, result.Err)
			return fmt.Errorf("%s: %w", result.URL, result.Err)
		}
		log.Verbosef("[ok]\t%s: %s", result.URL, result.Status)
		return nil
	})
	err := task.Wait()

	var failed int
	for result := range results.All() {
		if result.Err != nil {
			failed++
		}
	}
	log.Printf("[done]\tchecked %d URLs, %d failed", results.Len(), failed)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Printf("[done]\tcanceled before every URL was checked")
		}
		os.Exit(1)
	}
}

type checkResult struct {
	URL    string
	Status string
	Err    error
}

func check(ctx context.Context, target string) checkResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return checkResult{URL: target, Err: err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return checkResult{URL: target, Err: err}
	}
	resp.Body.Close()

	result := checkResult{URL: target, Status: resp.Status}
	if resp.StatusCode >= 400 {
		result.Err = errors.New(resp.Status)
	}
	return result
}
