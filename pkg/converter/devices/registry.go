package devices

import (
	"fmt"
	"sort"
	"strings"

	"github.com/james-see/acidstep/pkg/converter"
)

// Info describes a supported device
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var registry = map[string]struct {
	info Info
	new  func() converter.Device
}{
	"td3": {
		info: Info{ID: "td3", Name: "Behringer TD-3", Description: "TB-303 clone"},
		new:  func() converter.Device { return NewTD3() },
	},
}

var aliases = map[string]string{
	"td-3":  "td3",
	"tb303": "td3",
}

// Lookup returns a handler for the named device. An empty name selects the TD-3.
func Lookup(name string) (converter.Device, error) {
	id := strings.ToLower(strings.TrimSpace(name))
	if id == "" {
		id = "td3"
	}
	if a, ok := aliases[id]; ok {
		id = a
	}
	d, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown device %q", name)
	}
	return d.new(), nil
}

// List returns every supported device sorted by ID
func List() []Info {
	out := make([]Info, 0, len(registry))
	for _, d := range registry {
		out = append(out, d.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
