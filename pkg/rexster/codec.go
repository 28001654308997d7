package rexster

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

// Data is a request payload: a mapping of names to scalars, slices or nested
// maps. For POST and PUT it becomes the JSON body; for GET and DELETE it is
// encoded into the query string.
type Data map[string]any

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// encodeBody serializes data as the JSON body of a POST or PUT. Nil values
// are dropped and strings that are not valid UTF-8 are read as ISO-8859-1.
func encodeBody(data Data) ([]byte, error) {
	clean := make(map[string]any, len(data))
	for k, v := range data {
		if isNil(v) {
			continue
		}
		if s, ok := v.(string); ok {
			v = latin1ToUTF8(s)
		}
		clean[k] = v
	}
	body, err := jsonAPI.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return body, nil
}

// decodeBody decodes a response body. An empty or malformed body decodes to
// nil, which the caller treats as an empty result.
func decodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := jsonAPI.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

func latin1ToUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

// encodeQuery builds a form-encoded query string the way PHP's
// http_build_query does: nil values are skipped, booleans become 1 or 0,
// slices expand to key[0]=..&key[1]=.. and maps to key[sub]=... Keys are
// emitted in sorted order.
func encodeQuery(data Data) string {
	var parts []string
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = appendQueryValue(parts, k, data[k])
	}
	return strings.Join(parts, "&")
}

func appendQueryValue(parts []string, key string, v any) []string {
	if isNil(v) {
		return parts
	}
	switch val := v.(type) {
	case string:
		return append(parts, url.QueryEscape(key)+"="+url.QueryEscape(val))
	case bool:
		if val {
			return append(parts, url.QueryEscape(key)+"=1")
		}
		return append(parts, url.QueryEscape(key)+"=0")
	case float64:
		return append(parts, url.QueryEscape(key)+"="+strconv.FormatFloat(val, 'f', -1, 64))
	case float32:
		return append(parts, url.QueryEscape(key)+"="+strconv.FormatFloat(float64(val), 'f', -1, 32))
	case fmt.Stringer:
		return append(parts, url.QueryEscape(key)+"="+url.QueryEscape(val.String()))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			parts = appendQueryValue(parts, fmt.Sprintf("%s[%d]", key, i), rv.Index(i).Interface())
		}
		return parts
	case reflect.Map:
		subKeys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			sk := fmt.Sprint(iter.Key().Interface())
			subKeys = append(subKeys, sk)
			values[sk] = iter.Value().Interface()
		}
		sort.Strings(subKeys)
		for _, sk := range subKeys {
			parts = appendQueryValue(parts, key+"["+sk+"]", values[sk])
		}
		return parts
	case reflect.Ptr:
		return appendQueryValue(parts, key, rv.Elem().Interface())
	}
	return append(parts, url.QueryEscape(key)+"="+url.QueryEscape(fmt.Sprint(v)))
}

// pagingQuery renders the rexster paging parameters in their fixed order:
// offset start, offset end, return keys.
func (c *Client) pagingQuery() string {
	var parts []string
	if c.offsetStartSet {
		parts = append(parts, "rexster.offset.start="+strconv.Itoa(c.offsetStart))
	}
	if c.offsetEnd > 0 {
		parts = append(parts, "rexster.offset.end="+strconv.Itoa(c.offsetEnd))
	}
	if len(c.returnKeys) > 0 {
		parts = append(parts, "rexster.returnKeys="+url.QueryEscape(strings.Join(c.returnKeys, ",")))
	}
	return strings.Join(parts, "&")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isEmpty mirrors the loose emptiness test applied to decoded responses and
// to the message/error fields of an error body.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == "" || val == "0"
	case bool:
		return !val
	case float64:
		return val == 0
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}
