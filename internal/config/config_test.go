package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
swf:
  baseUrl: http://kogito.local/
  port: "8899"
  workflowService:
    path: /tmp/workflows
    container: quay.io/kiegroup/kogito-swf-devmode:latest
    environment: staging
    jira:
      host: jira.example.com
      bearerToken: s3cr3t
  editor:
    path: https://editor.example.com/envelope
sync:
  schedule: "@every 5m"
  parameters_mode: empty
server:
  port: 9000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://kogito.local", cfg.SWF.BaseURL)
	assert.Equal(t, "http://kogito.local:8899", cfg.SWF.ServiceURL())
	assert.Equal(t, "/tmp/workflows", cfg.SWF.WorkflowService.Path)
	assert.Equal(t, "staging", cfg.SWF.Environment())
	assert.Equal(t, DefaultOwner, cfg.SWF.Owner())
	require.NotNil(t, cfg.SWF.WorkflowService.Jira)
	assert.Equal(t, "jira.example.com", cfg.SWF.WorkflowService.Jira.Host)
	assert.Equal(t, "s3cr3t", cfg.SWF.WorkflowService.Jira.BearerToken)
	assert.Equal(t, "https://editor.example.com/envelope", cfg.SWF.Editor.Path)
	assert.Equal(t, "@every 5m", cfg.Sync.Schedule)
	assert.Equal(t, "empty", cfg.Sync.ParametersMode)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultBackendURL, cfg.Backend.BaseURL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SWF_PORT", "9999")
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "http://kogito.local:9999", cfg.SWF.ServiceURL())
}

func TestLoadConfigRejectsBadParametersMode(t *testing.T) {
	content := `
swf:
  baseUrl: http://kogito.local
  port: "8899"
sync:
  parameters_mode: sometimes
`
	_, err := LoadConfig(writeConfig(t, content))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateTLS(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg.TLS.Enable = true
	assert.ErrorIs(t, cfg.Validate(), ErrIncompleteTLS)

	cfg.TLS.CertFile = "cert.pem"
	cfg.TLS.KeyFile = "key.pem"
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsApply(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8899", cfg.SWF.ServiceURL())
	assert.Equal(t, DefaultEnvironment, cfg.SWF.Environment())
	assert.Equal(t, "omit", cfg.Sync.ParametersMode)
	assert.Equal(t, "swf", cfg.NATS.SubjectPrefix)
}

func TestDatabaseURL(t *testing.T) {
	var cfg Config
	cfg.DB.Host = "db"
	cfg.DB.Port = 5432
	cfg.DB.User = "u"
	cfg.DB.Password = "p"
	cfg.DB.Name = "catalog"
	cfg.DB.SSLMode = "disable"
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=catalog sslmode=disable",
		cfg.DatabaseURL(),
	)
}
