package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"
)

// Fields holds the decoded front matter of one document.
type Fields map[string]any

var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// Parse separates front matter from the Markdown body.
//
// YAML (`---`) and TOML (`+++`) blocks are recognized. A document without a
// front matter block yields empty Fields and the full content as body.
func Parse(content []byte) (Fields, []byte, error) {
	var fields map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(content), &fields, formats...)
	if err != nil {
		return nil, nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Fields(fields), body, nil
}

// Has reports whether key is present with a non-null value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// String returns the scalar value of key as text. Absent and null keys yield "".
// Lists and mappings are rejected.
func (f Fields) String(key string) (string, error) {
	switch v := f[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	case time.Time:
		return v.Format(time.DateOnly), nil
	default:
		return "", fmt.Errorf("front matter key %q: expected a scalar, got %T", key, v)
	}
}

// Bool returns the boolean value of key, or def when the key is absent.
// Boolean strings ("true", "no", ...) and the integers 0 and 1 are accepted.
func (f Fields) Bool(key string, def bool) (bool, error) {
	switch v := f[key].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def, fmt.Errorf("front matter key %q: %q is not a boolean", key, v)
		}
		return b, nil
	case int:
		return intBool(key, int64(v), def)
	case int64:
		return intBool(key, v, def)
	default:
		return def, fmt.Errorf("front matter key %q: expected a boolean, got %T", key, v)
	}
}

func intBool(key string, v int64, def bool) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return def, fmt.Errorf("front matter key %q: %d is not a boolean", key, v)
}

// Date returns the date stored under key. ok is false when the key is absent
// or empty. Strings are parsed leniently (ISO dates, RFC 3339, "Jan 2, 2006", ...).
func (f Fields) Date(key string) (t time.Time, ok bool, err error) {
	switch v := f[key].(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false, nil
		}
		parsed, perr := dateparse.ParseStrict(s)
		if perr != nil {
			return time.Time{}, false, fmt.Errorf("front matter key %q: %w", key, perr)
		}
		return parsed, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("front matter key %q: expected a date, got %T", key, v)
	}
}
