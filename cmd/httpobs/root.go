// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bassosimone/httpobs"
	"github.com/spf13/cobra"
)

// getOptions contains the flags of the get command.
type getOptions struct {
	ignoreExprs   []string
	ignoreHosts   []string
	ignoreMethods []string
	ignorePaths   []string
	logJSON       bool
	maxBody       int64
	timeout       time.Duration
	verbose       bool
	yaml          bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "httpobs",
		Short:         "Observe HTTP traffic",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newGetCommand(stdout, stderr))
	return root
}

func newGetCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &getOptions{}
	cmd := &cobra.Command{
		Use:   "get URL...",
		Short: "Fetch URLs and print the observed exchanges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newObserveConfig(opts, stdout, stderr)
			if err != nil {
				return err
			}
			client := &http.Client{}
			cfg.Enable(client)
			for _, url := range args {
				if err := fetch(cmd.Context(), client, url, opts.timeout); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&opts.ignoreExprs, "ignore-expr", nil, "skip requests matching this expression")
	flags.StringArrayVar(&opts.ignoreHosts, "ignore-host", nil, "skip requests to this host")
	flags.StringArrayVar(&opts.ignoreMethods, "ignore-method", nil, "skip requests using this method")
	flags.StringArrayVar(&opts.ignorePaths, "ignore-path", nil, "skip requests whose path matches this glob")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit JSON structured logs on stderr")
	flags.Int64Var(&opts.maxBody, "max-body", httpobs.DefaultMaxBodySize, "maximum number of body bytes to render")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for each request")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "emit structured logs on stderr")
	flags.BoolVar(&opts.yaml, "yaml", false, "render YAML bodies")
	return cmd
}

// newObserveConfig builds the [*httpobs.Config] described by opts.
func newObserveConfig(opts *getOptions, stdout, stderr io.Writer) (*httpobs.Config, error) {
	cfg := httpobs.NewConfig()
	cfg.MaxBodySize = opts.maxBody
	cfg.DefaultSink = func() httpobs.Sink { return httpobs.NewConsoleSink(stdout) }
	cfg.Reset()

	switch {
	case opts.logJSON:
		cfg.Logger = slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case opts.verbose:
		cfg.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if len(opts.ignoreHosts) > 0 {
		cfg.IgnoreRequestsMatching(httpobs.HostPredicate(opts.ignoreHosts...))
	}
	if len(opts.ignoreMethods) > 0 {
		cfg.IgnoreRequestsMatching(httpobs.MethodPredicate(opts.ignoreMethods...))
	}
	for _, pattern := range opts.ignorePaths {
		p, err := httpobs.NewPathGlobPredicate(pattern)
		if err != nil {
			return nil, fmt.Errorf("--ignore-path: %w", err)
		}
		cfg.IgnoreRequestsMatching(p)
	}
	for _, source := range opts.ignoreExprs {
		p, err := httpobs.NewExprPredicate(source)
		if err != nil {
			return nil, fmt.Errorf("--ignore-expr: %w", err)
		}
		cfg.IgnoreRequestsMatching(p)
	}

	if opts.yaml {
		cfg.RegisterDecoder(httpobs.YAMLDecoder{}, "application/yaml", "application/x-yaml", "text/yaml")
	}
	return cfg, nil
}

// fetch performs a GET request and drains the response body.
func fetch(ctx context.Context, client *http.Client, url string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}
