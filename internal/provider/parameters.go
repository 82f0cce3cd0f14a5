package provider

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"serverless-workflow/backend/internal/catalog"
	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/pkg/models"
)

// ParametersMode decides what a template gets when its workflow has no
// usable OpenAPI POST parameters
type ParametersMode string

const (
	// ParametersOmit leaves the parameters field out of the template
	ParametersOmit ParametersMode = "omit"
	// ParametersEmpty sets the parameters field to an empty object
	ParametersEmpty ParametersMode = "empty"
)

const parametersTitle = "Fill in some input parameters"

// TemplateParameters derives the parameter schema of a workflow from the POST
// operation of the OpenAPI path "/<id>". Each declared parameter becomes a
// flat property carrying its name and schema type.
func (p *WorkflowEntityProvider) TemplateParameters(
	item models.SwfItem, doc *openapi3.T,
) *catalog.TemplateParameters {
	var path *openapi3.PathItem
	if doc != nil && doc.Paths != nil {
		path = doc.Paths.Value("/" + item.ID)
	}
	if path == nil {
		return p.missingParameters(item.ID, "OpenAPI definition")
	}
	if path.Post == nil {
		return p.missingParameters(item.ID, "OpenAPI POST definition")
	}
	if path.Post.Parameters == nil {
		return p.missingParameters(item.ID, "OpenAPI POST parameter definitions")
	}

	properties := make(map[string]catalog.ParameterProperty, len(path.Post.Parameters))
	for _, ref := range path.Post.Parameters {
		param := resolveParameter(doc, ref)
		if param == nil {
			if ref != nil {
				p.logger.Warn("Skipping unresolved parameter reference",
					logging.WorkflowID(item.ID), "ref", ref.Ref)
			}
			continue
		}
		properties[param.Name] = catalog.ParameterProperty{
			Title: param.Name,
			Type:  schemaType(doc, param.Schema),
		}
	}

	return &catalog.TemplateParameters{
		Title:      parametersTitle,
		Properties: properties,
	}
}

func (p *WorkflowEntityProvider) missingParameters(
	id, what string,
) *catalog.TemplateParameters {
	p.logger.Error(fmt.Sprintf(
		"Unable to locate %s for '%s'. Zero parameters will be available.", what, id,
	), logging.WorkflowID(id))

	if p.mode == ParametersEmpty {
		return &catalog.TemplateParameters{}
	}
	return nil
}

func schemaType(doc *openapi3.T, ref *openapi3.SchemaRef) string {
	schema := resolveSchema(doc, ref)
	if schema == nil || schema.Type == nil {
		return ""
	}
	types := []string(*schema.Type)
	if len(types) == 0 {
		return ""
	}
	return types[0]
}
