package discovery

import (
	"sort"
	"strings"
)

// EncodeTXT turns key/value pairs into sorted "key=value" TXT strings.
func EncodeTXT(records map[string]string) []string {
	out := make([]string, 0, len(records))
	for k, v := range records {
		out = append(out, k+"="+v)
	}

	sort.Strings(out)

	return out
}

// DecodeTXT parses "key=value" TXT strings. Entries without "=" are kept
// with an empty value.
func DecodeTXT(txt []string) map[string]string {
	out := make(map[string]string, len(txt))
	for _, entry := range txt {
		k, v, _ := strings.Cut(entry, "=")
		if k == "" {
			continue
		}

		out[k] = v
	}

	return out
}
