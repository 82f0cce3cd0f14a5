package services

import (
	"context"
	"errors"
	"strings"
)

// StaticDiscovery resolves every plugin to <base>/api/<pluginID>
type StaticDiscovery struct {
	base string
}

var ErrUnknownPlugin = errors.New("plugin id is empty")

var _ DiscoveryAPI = (*StaticDiscovery)(nil)

// NewStaticDiscovery creates a discovery rooted at the backend base URL
func NewStaticDiscovery(base string) *StaticDiscovery {
	return &StaticDiscovery{base: strings.TrimRight(base, "/")}
}

// BaseURL returns the plugin's API root
func (d *StaticDiscovery) BaseURL(_ context.Context, pluginID string) (string, error) {
	if pluginID == "" {
		return "", ErrUnknownPlugin
	}
	return d.base + "/api/" + pluginID, nil
}
