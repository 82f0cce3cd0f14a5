// Package catalog models the catalog entities contributed by entity
// providers and the mutations used to publish them.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	APIVersionTemplate = "scaffolder.backstage.io/v1beta3"
	KindTemplate       = "Template"
	DefaultNamespace   = "default"

	AnnotationManagedByLocation       = "backstage.io/managed-by-location"
	AnnotationManagedByOriginLocation = "backstage.io/managed-by-origin-location"
)

// Metadata is the common metadata block of a catalog entity
type Metadata struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// ParameterProperty is a single form field of a template
type ParameterProperty struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// TemplateParameters is the parameter schema of a template. A zero value
// marshals to an empty object; a non-nil Properties map is always written,
// even when it holds no entries.
type TemplateParameters struct {
	Title      string                       `json:"title,omitempty"`
	Properties map[string]ParameterProperty `json:"properties"`
}

func (p TemplateParameters) MarshalJSON() ([]byte, error) {
	type wire struct {
		Title      string                        `json:"title,omitempty"`
		Properties *map[string]ParameterProperty `json:"properties,omitempty"`
	}
	w := wire{Title: p.Title}
	if p.Properties != nil {
		w.Properties = &p.Properties
	}
	return json.Marshal(w)
}

// TemplateStep is a scaffolder action run by a template
type TemplateStep struct {
	ID     string         `json:"id"`
	Name   string         `json:"name,omitempty"`
	Action string         `json:"action"`
	Input  map[string]any `json:"input,omitempty"`
}

// TemplateSpec is the spec block of a Template entity. A nil Parameters
// leaves the field out entirely.
type TemplateSpec struct {
	Owner      string              `json:"owner"`
	Type       string              `json:"type"`
	Steps      []TemplateStep      `json:"steps"`
	Parameters *TemplateParameters `json:"parameters,omitempty"`
}

// TemplateEntity is a scaffolder Template record
type TemplateEntity struct {
	APIVersion string       `json:"apiVersion"`
	Kind       string       `json:"kind"`
	Metadata   Metadata     `json:"metadata"`
	Spec       TemplateSpec `json:"spec"`
}

// Ref returns the entity reference in kind:namespace/name form
func (e *TemplateEntity) Ref() string {
	ns := e.Metadata.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return strings.ToLower(fmt.Sprintf("%s:%s/%s", e.Kind, ns, e.Metadata.Name))
}
