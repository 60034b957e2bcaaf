package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// LaunchConfiguration is a named, attribute-keyed record describing a cargo test run
type LaunchConfiguration struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Origin     string            `json:"origin,omitempty"` // ID of the configuration this one was copied from
	Packages   []string          `json:"packages"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewLaunchConfiguration creates a configuration with a fresh ID
func NewLaunchConfiguration(name string, packages []string) *LaunchConfiguration {
	return &LaunchConfiguration{
		ID:         uuid.New().String(),
		Name:       name,
		Packages:   append([]string(nil), packages...),
		Attributes: make(map[string]string),
		CreatedAt:  time.Now(),
	}
}

// Copy returns an unsaved working copy under a new name and ID
func (c *LaunchConfiguration) Copy(name string) *LaunchConfiguration {
	cp := NewLaunchConfiguration(name, c.Packages)
	cp.Origin = c.ID
	maps.Copy(cp.Attributes, c.Attributes)
	return cp
}

// Attribute returns the attribute value, or def when unset
func (c *LaunchConfiguration) Attribute(key, def string) string {
	if v, ok := c.Attributes[key]; ok {
		return v
	}
	return def
}

// SetAttribute sets an attribute value
func (c *LaunchConfiguration) SetAttribute(key, value string) {
	if c.Attributes == nil {
		c.Attributes = make(map[string]string)
	}
	c.Attributes[key] = value
}
