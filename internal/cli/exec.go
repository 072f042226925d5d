package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willdrewes/easy-curl-client/curl"
)

func newExecCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec URL",
		Short: "Send one request and print the response body",
		Example: `  easycurl exec https://httpbin.org/get
  easycurl exec -X POST -d name=gopher -d lang=go https://httpbin.org/post
  easycurl exec -X PUT --data-raw '{"a":1}' -H 'Content-Type: application/json' URL
  easycurl exec --opt max_redirects=0 --opt x-basic_auth=user:pass -i URL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExec(cmd, args[0])
		},
	}

	f := cmd.Flags()
	f.StringP("request", "X", "GET", "HTTP method (GET, POST, PUT, DELETE)")
	f.StringArrayP("header", "H", nil, "Extra header (repeatable, e.g., -H 'X-Custom: value')")
	f.StringArrayP("data", "d", nil, "Form parameter key=value (repeatable)")
	f.String("data-raw", "", "Raw request body, sent instead of form parameters")
	f.StringArray("opt", nil, "Transport option name=value (repeatable, see 'easycurl exec --help')")
	f.BoolP("include", "i", false, "Print status and response headers before the body")
	f.Bool("no-follow", false, "Do not follow redirects")

	return cmd
}

func (a *app) runExec(cmd *cobra.Command, rawURL string) error {
	method, _ := cmd.Flags().GetString("request")
	headers, _ := cmd.Flags().GetStringArray("header")
	data, _ := cmd.Flags().GetStringArray("data")
	dataRaw, _ := cmd.Flags().GetString("data-raw")
	rawOpts, _ := cmd.Flags().GetStringArray("opt")
	include, _ := cmd.Flags().GetBool("include")
	noFollow, _ := cmd.Flags().GetBool("no-follow")

	c, err := a.newCurl()
	if err != nil {
		return err
	}

	c.SetURL(rawURL).
		SetMethod(method).
		SetHeaders(headers...).
		SetRequestBody(dataRaw).
		SetOption(curl.KeyTimeout, a.cfg.Timeout)

	if (len(data) > 0 || dataRaw != "") && !cmd.Flags().Changed("request") {
		c.SetMethod("POST")
	}

	for _, kv := range data {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("data %q must look like key=value", kv)
		}
		c.SetPostParam(k, v)
	}

	if noFollow {
		c.SetOption(curl.KeyFollowRedirects, false)
	}

	for _, kv := range rawOpts {
		k, v, err := parseOpt(kv)
		if err != nil {
			return err
		}
		c.SetOption(k, v)
	}

	body, err := c.Execute(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if include {
		writeHead(out, c.Info().Proto, c.StatusCode(), c.ResponseHeaders())
	}

	_, err = out.Write(body)
	return err
}

// parseOpt reads name=value into a typed option value.
func parseOpt(kv string) (curl.Key, any, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok {
		return "", nil, fmt.Errorf("option %q must look like name=value", kv)
	}

	k, err := curl.ParseKey(name)
	if err != nil {
		return "", nil, err
	}

	switch k {
	case curl.KeyTimeout:
		if d, err := time.ParseDuration(raw); err == nil {
			return k, d, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", nil, fmt.Errorf("option %s: %q is neither a duration nor whole seconds", k, raw)
		}
		return k, n, nil

	case curl.KeyMaxRedirects:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", nil, fmt.Errorf("option %s: %w", k, err)
		}
		return k, n, nil

	case curl.KeyPost, curl.KeyFollowRedirects, curl.KeyCaptureRequestHeaders, curl.KeyIncludeHeaders:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", nil, fmt.Errorf("option %s: %w", k, err)
		}
		return k, b, nil
	}

	if _, ok := k.Passthrough(); ok {
		if b, err := strconv.ParseBool(raw); err == nil {
			return k, b, nil
		}
	}

	return k, raw, nil
}

func writeHead(w io.Writer, proto string, status int, headers map[string]string) {
	fmt.Fprintf(w, "%s %d\n", proto, status)
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		fmt.Fprintf(w, "%s: %s\n", name, headers[name])
	}
	fmt.Fprintln(w)
}
