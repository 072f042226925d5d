package curl

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// RequestConfig accumulates everything needed to build one request.
type RequestConfig struct {
	URL        string      `json:"url" validate:"required,url"`
	Method     string      `json:"method" validate:"required,oneof=GET POST PUT DELETE"`
	PostParams Params      `json:"-"`
	Body       string      `json:"body"`
	Headers    []Header    `json:"-"`
	Options    map[Key]any `json:"-"`
}

// Header is a single outgoing header. Duplicate names are allowed and
// sent in order.
type Header struct {
	Name  string
	Value string
}

func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// ParseHeader splits a raw "Name: value" line on its first colon.
func ParseHeader(line string) (Header, error) {
	name, value, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Header{}, fmt.Errorf("header %q must look like \"Name: value\"", line)
	}

	return Header{Name: name, Value: strings.TrimSpace(value)}, nil
}

// Params is an ordered set of form parameters. Keys keep the position
// of their first write; later writes replace the value.
type Params struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces key.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Merge sets every pair from m. Keys new to p are appended in sorted
// order so the result does not depend on map iteration.
func (p *Params) Merge(m map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		p.Set(k, m[k])
	}
}

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	return slices.Clone(p.keys)
}

func (p Params) Len() int {
	return len(p.keys)
}

// Encode serializes p as key=value pairs joined by '&', each side
// query-escaped.
func (p Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

func (p Params) clone() Params {
	return Params{keys: slices.Clone(p.keys), values: maps.Clone(p.values)}
}
