package api

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"

	"serverless-workflow/backend/internal/auth"
)

//go:embed openapi.yaml
var openAPISpec []byte

// LoadSpec parses the embedded OpenAPI document
func LoadSpec() (*openapi3.T, error) {
	return openapi3.NewLoader().LoadFromData(openAPISpec)
}

// SpecHandler serves the OpenAPI YAML document with the issuer placeholder
// replaced, so the file itself never names a tenant.
func SpecHandler(issuer string) echo.HandlerFunc {
	spec := strings.ReplaceAll(string(openAPISpec), "{oidcIssuer}", strings.TrimRight(issuer, "/"))
	return func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", []byte(spec))
	}
}

// SwaggerHandler serves a Swagger UI page pointing at /openapi.yaml. Assets
// come from the CDN so nothing static is checked in.
func SwaggerHandler(clientID string) echo.HandlerFunc {
	return func(c echo.Context) error {
		scheme := c.Scheme()
		redirect := scheme + "://" + c.Request().Host + "/docs/oauth2-redirect.html"

		html := strings.NewReplacer(
			"${SPEC_URL}", "/openapi.yaml",
			"${OAUTH2_REDIRECT}", redirect,
			"${CLIENT_ID}", clientID,
			"${SCOPES}", strings.Join(auth.AllScopes, " "),
		).Replace(swaggerHTML)
		return c.HTML(http.StatusOK, html)
	}
}

// OAuth2RedirectHandler serves the page Swagger UI returns to after login
func OAuth2RedirectHandler(c echo.Context) error {
	return c.HTML(http.StatusOK, oauthRedirectHTML)
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Serverless Workflow API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
  <script>
  window.onload = function() {
    const ui = SwaggerUIBundle({
      url: "${SPEC_URL}",
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: "BaseLayout",
      oauth2RedirectUrl: "${OAUTH2_REDIRECT}",
    });
    ui.initOAuth({
      clientId: "${CLIENT_ID}",
      scopes: "${SCOPES}",
      usePkceWithAuthorizationCodeGrant: true,
    });
    window.ui = ui;
  }
  </script>
</body>
</html>`

const oauthRedirectHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"/><title>OAuth2 Redirect</title></head>
<body>
<script>
if (window.opener && window.opener.swaggerUIRedirectCallback) {
  window.opener.swaggerUIRedirectCallback(window.location.href);
}
</script>
</body>
</html>`
