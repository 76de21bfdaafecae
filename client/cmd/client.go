/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

func createClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.HTTPClient.Timeout = timeout
	c.Logger = nil
	if debug {
		log.SetLevel(log.DebugLevel)
		c.Logger = log.StandardLogger()
	}
	// retry only when the server is unreachable or not ready yet
	c.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

// devicePath returns the escaped request path below the device id.
func devicePath(id, p string) string {
	return "/" + url.PathEscape(id) + "/" + p
}

// do sends the request and returns the response body. Non 2xx answers are
// returned as errors carrying the server error message.
func do(ctx context.Context, method, path string, q url.Values, body interface{}) ([]byte, error) {
	u := strings.TrimSuffix(addr, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rb io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rb = bytes.NewReader(b)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, rb)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rsp, err := createClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	b, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode/100 != 2 {
		errRsp := struct {
			Error string `json:"error"`
		}{}
		if json.Unmarshal(b, &errRsp) == nil && errRsp.Error != "" {
			return nil, fmt.Errorf("%s: %s", rsp.Status, errRsp.Error)
		}
		return nil, fmt.Errorf("%s: %s", rsp.Status, strings.TrimSpace(string(b)))
	}
	return b, nil
}

// printResponse prints a JSON body indented, any other body as is.
func printResponse(b []byte) {
	out := new(bytes.Buffer)
	if json.Indent(out, b, "", "  ") != nil {
		fmt.Println(strings.TrimSpace(string(b)))
		return
	}
	fmt.Println(strings.TrimSpace(out.String()))
}

func datastoreQuery() url.Values {
	q := url.Values{}
	if target != "" {
		q.Set("target", target)
	}
	return q
}
