package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrUnsupportedCookies = errors.New("unsupported cookies file format")

// LoadCookies reads a cookie jar from common export formats: either a plain
// name->value object or an array of {name, value} entries.
func LoadCookies(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cookies file not readable at %s: %w", path, err)
	}

	var asObject map[string]any
	if err := json.Unmarshal(data, &asObject); err == nil {
		jar := make(map[string]string, len(asObject))
		for name, value := range asObject {
			jar[name] = fmt.Sprintf("%v", value)
		}
		return jar, nil
	}

	var asList []struct {
		Name  *string `json:"name"`
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(data, &asList); err == nil {
		jar := make(map[string]string, len(asList))
		for _, c := range asList {
			if c.Name != nil && c.Value != nil {
				jar[*c.Name] = *c.Value
			}
		}
		return jar, nil
	}

	return nil, ErrUnsupportedCookies
}
