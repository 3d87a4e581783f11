package cartridge

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

// Properties gives read access to the agent properties file. Keys are
// dotted paths, so "artifact.update.interval" resolves either a dotted
// key or the nested table [artifact.update] interval = ...
type Properties struct {
	tree *toml.Tree
}

func LoadProperties(path string) (Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Properties{}, fmt.Errorf("error reading properties file: %w", err)
	}

	return ParseProperties(string(data))
}

func ParseProperties(data string) (Properties, error) {
	tree, err := toml.Load(data)
	if err != nil {
		return Properties{}, fmt.Errorf("error parsing properties file: %w", err)
	}

	return Properties{tree: tree}, nil
}

// Get returns the value stored under key rendered as a string. The
// second result is false when the key is absent or holds a table.
func (p Properties) Get(key string) (string, bool) {
	if p.tree == nil || !p.tree.Has(key) {
		return "", false
	}

	switch v := p.tree.Get(key).(type) {
	case *toml.Tree, []*toml.Tree:
		return "", false
	case string:
		return v, true
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, fmt.Sprint(e))
		}

		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(v), true
	}
}

func (p Properties) String(key, def string) string {
	if v, ok := p.Get(key); ok && v != "" {
		return v
	}

	return def
}

func (p Properties) Bool(key string, def bool) (bool, error) {
	v, ok := p.Get(key)
	if !ok || v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("property %s: %w", key, err)
	}

	return b, nil
}

func (p Properties) Int(key string, def int) (int, error) {
	v, ok := p.Get(key)
	if !ok || v == "" {
		return def, nil
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("property %s: %w", key, err)
	}

	return i, nil
}

// Duration accepts Go duration strings ("90s") and bare integers, which
// are read as seconds.
func (p Properties) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := p.Get(key)
	if !ok || v == "" {
		return def, nil
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("property %s: %w", key, err)
	}

	return d, nil
}

// Flatten returns every leaf value stored below key, keyed by its full
// dotted path.
func (p Properties) Flatten(key string) map[string]string {
	out := make(map[string]string)
	if p.tree == nil {
		return out
	}

	sub, ok := p.tree.Get(key).(*toml.Tree)
	if !ok {
		return out
	}
	flatten(sub, key, out)

	return out
}

func flatten(t *toml.Tree, prefix string, out map[string]string) {
	for _, k := range t.Keys() {
		path := prefix + "." + k
		if sub, ok := t.Get(k).(*toml.Tree); ok {
			flatten(sub, path, out)

			continue
		}
		if v, ok := (Properties{tree: t}).Get(k); ok {
			out[path] = v
		}
	}
}
