package curl

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/willdrewes/easy-curl-client/client"
)

func TestDecompose(t *testing.T) {
	head := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\n"

	testCases := map[string]struct {
		raw        string
		headerSize int
		expHeaders map[string]string
		expBody    string
	}{
		"basic": {
			raw:        head + "hello",
			headerSize: len(head),
			expHeaders: map[string]string{"Content-Type": "text/plain"},
			expBody:    "hello",
		},
		"binaryBody": {
			raw:        head + "\x00\xff\r\n: x",
			headerSize: len(head),
			expHeaders: map[string]string{"Content-Type": "text/plain"},
			expBody:    "\x00\xff\r\n: x",
		},
		"noHeaderBlock": {
			raw:        "just body",
			headerSize: 0,
			expHeaders: map[string]string{},
			expBody:    "just body",
		},
		"headerSizeClamped": {
			raw:        "HTTP/1.1 204 No Content\r\nX-A: 1\r\n",
			headerSize: 1000,
			expHeaders: map[string]string{"X-A": "1"},
			expBody:    "",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp := Decompose(&client.RawResponse{
				Raw:  []byte(tc.raw),
				Info: client.Info{StatusCode: 299, HeaderSize: tc.headerSize},
			})

			if resp.StatusCode != 299 {
				t.Errorf("status must come from info, got %d", resp.StatusCode)
			}
			if diff := cmp.Diff(tc.expHeaders, resp.Headers); diff != "" {
				t.Errorf("headers mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.expBody, string(resp.Body)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	block := "HTTP/1.1 200 OK\r\n" +
		"Set-Cookie: a=1\r\n" +
		"malformed-line\r\n" +
		"X-Colon:no-space\r\n" +
		"Set-Cookie: b=2\r\n" +
		"X-Url: http://x.test: 80\n" +
		"\r\n"

	want := map[string]string{
		"Set-Cookie": "b=2",
		"X-Url":      "http://x.test: 80",
	}

	if diff := cmp.Diff(want, ParseHeaders(block)); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}
