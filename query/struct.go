package query

import (
	"net/url"
	"sort"
	"strings"

	querystring "github.com/google/go-querystring/query"
)

// FromStruct encodes a typed options struct into the bracket-array query
// convention using go-querystring field tags. Slice fields should carry the
// "brackets" option (`url:"ids,omitempty,brackets"`) and nested structs encode
// as "parent[child]=value" pairs automatically.
func FromStruct(opt any) (string, error) {
	values, err := querystring.Values(opt)
	if err != nil {
		return "", err
	}
	return Flatten(values), nil
}

// Flatten renders url.Values into a raw query string without percent-encoding
// the bracket markers the API expects verbatim. Keys are emitted in lexical
// order; repeated values keep their input order.
func Flatten(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		for _, value := range values[key] {
			parts = append(parts, key+"="+value)
		}
	}
	return strings.Join(parts, "&")
}
