package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serverless-workflow/backend/internal/catalog"
)

func TestRef(t *testing.T) {
	e := catalog.TemplateEntity{
		Kind:     catalog.KindTemplate,
		Metadata: catalog.Metadata{Name: "Order-Flow"},
	}
	assert.Equal(t, "template:default/order-flow", e.Ref())

	e.Metadata.Namespace = "Team"
	assert.Equal(t, "template:team/order-flow", e.Ref())
}

func TestNilParametersAreOmitted(t *testing.T) {
	spec := catalog.TemplateSpec{Owner: "o", Type: "t"}
	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"o","type":"t","steps":null}`, string(data))

	spec.Steps = []catalog.TemplateStep{}
	spec.Parameters = &catalog.TemplateParameters{}
	data, err = json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"o","type":"t","steps":[],"parameters":{}}`, string(data))
}

func TestDeclaredButEmptyPropertiesAreWritten(t *testing.T) {
	params := catalog.TemplateParameters{
		Title:      "Fill in some input parameters",
		Properties: map[string]catalog.ParameterProperty{},
	}
	data, err := json.Marshal(params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Fill in some input parameters","properties":{}}`, string(data))

	var back catalog.TemplateParameters
	require.NoError(t, json.Unmarshal(data, &back))
	assert.NotNil(t, back.Properties)
	assert.Empty(t, back.Properties)
}
