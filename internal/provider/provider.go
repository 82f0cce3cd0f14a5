// Package provider turns the workflow definitions of the orchestration
// service into catalog Template entities.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gopkg.in/yaml.v3"

	"serverless-workflow/backend/internal/catalog"
	"serverless-workflow/backend/internal/events"
	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/pkg/models"
)

const (
	// ProviderName identifies the entities owned by this provider
	ProviderName = "ServerlessWorkflowEntityProvider"

	processesPath = "/management/processes"
	openAPIPath   = "/q/openapi"
)

var (
	ErrDecodeProcesses = errors.New("failed to decode process list")
	ErrDecodeOpenAPI   = errors.New("failed to decode OpenAPI document")
)

// Options configures a WorkflowEntityProvider
type Options struct {
	Reader     URLReader
	ServiceURL string
	Env        string
	Owner      string
	Mode       ParametersMode
	Logger     *logging.Logger
	Meter      metric.Meter
}

// WorkflowEntityProvider publishes one Template entity per workflow each time
// it receives a refresh event. It is both a catalog.EntityProvider and an
// events.Subscriber; the caller wires it to the catalog and the broker.
type WorkflowEntityProvider struct {
	reader     URLReader
	serviceURL string
	env        string
	owner      string
	mode       ParametersMode
	logger     *logging.Logger
	runs       metric.Int64Counter

	mu   sync.RWMutex
	conn catalog.Connection
}

var (
	_ catalog.EntityProvider = (*WorkflowEntityProvider)(nil)
	_ events.Subscriber      = (*WorkflowEntityProvider)(nil)
)

// New creates a provider. Missing owner, mode, logger or meter fall back to
// defaults; a missing reader or service URL makes every sync a no-op.
func New(opts Options) (*WorkflowEntityProvider, error) {
	if opts.Owner == "" {
		opts.Owner = "swf@example.com"
	}
	if opts.Mode == "" {
		opts.Mode = ParametersOmit
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter("serverless-workflow/backend/provider")
	}

	runs, err := opts.Meter.Int64Counter("swf.sync.runs",
		metric.WithDescription("Workflow template synchronisations by outcome"))
	if err != nil {
		return nil, err
	}

	return &WorkflowEntityProvider{
		reader:     opts.Reader,
		serviceURL: opts.ServiceURL,
		env:        opts.Env,
		owner:      opts.Owner,
		mode:       opts.Mode,
		logger:     opts.Logger.With("component", ProviderName),
		runs:       runs,
	}, nil
}

// ProviderName identifies the provider in the catalog
func (p *WorkflowEntityProvider) ProviderName() string {
	return ProviderName
}

// Connect stores the catalog connection used by later syncs
func (p *WorkflowEntityProvider) Connect(_ context.Context, conn catalog.Connection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = conn
	return nil
}

// SupportedTopics lists the topics that trigger a sync
func (p *WorkflowEntityProvider) SupportedTopics() []string {
	return []string{models.Topic}
}

// LocationKey is attached to every entity of a mutation
func (p *WorkflowEntityProvider) LocationKey() string {
	return "swf-provider:" + p.env
}

// OnEvent runs a full sync for refresh events. Other topics, or a provider
// lacking its reader, connection or service URL, are ignored silently.
func (p *WorkflowEntityProvider) OnEvent(ctx context.Context, params events.Params) error {
	if params.Topic != models.Topic {
		return nil
	}

	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()
	if p.reader == nil || conn == nil || p.serviceURL == "" {
		return nil
	}

	err := p.sync(ctx, conn)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	p.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return err
}

func (p *WorkflowEntityProvider) sync(ctx context.Context, conn catalog.Connection) error {
	p.logger.Info("Retrieving Serverless Workflow definitions")

	items, err := p.fetchItems(ctx)
	if err != nil {
		return err
	}

	doc, err := p.fetchOpenAPI(ctx)
	if err != nil {
		return err
	}

	entities := p.Entities(items, doc)
	deferred := make([]catalog.DeferredEntity, 0, len(entities))
	for _, e := range entities {
		deferred = append(deferred, catalog.DeferredEntity{
			Entity:      e,
			LocationKey: p.LocationKey(),
		})
	}

	return conn.ApplyMutation(ctx, catalog.Mutation{
		Type:     catalog.MutationFull,
		Entities: deferred,
	})
}

func (p *WorkflowEntityProvider) fetchItems(ctx context.Context) ([]models.SwfItem, error) {
	data, err := p.reader.ReadURL(ctx, p.serviceURL+processesPath)
	if err != nil {
		return nil, err
	}

	var listed []models.SwfItem
	if err := json.Unmarshal(data, &listed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeProcesses, err)
	}

	items := make([]models.SwfItem, 0, len(listed))
	for _, swf := range listed {
		items = append(items, models.SwfItem{
			ID:         swf.ID,
			Name:       swf.Name,
			Definition: "",
		})
	}
	return items, nil
}

func (p *WorkflowEntityProvider) fetchOpenAPI(ctx context.Context) (*openapi3.T, error) {
	data, err := p.reader.ReadURL(ctx, p.serviceURL+openAPIPath)
	if err != nil {
		return nil, err
	}

	doc, err := ParseOpenAPI(data)
	if err != nil {
		return nil, err
	}

	if p.logger.Enabled(ctx, slog.LevelDebug) {
		if dump, err := dumpYAML(doc); err == nil {
			p.logger.Debug("Loaded OpenAPI definitions", "document", dump)
		}
	}
	return doc, nil
}

// Entities maps workflow items to Template entities, one per item
func (p *WorkflowEntityProvider) Entities(
	items []models.SwfItem, doc *openapi3.T,
) []catalog.TemplateEntity {
	location := "url:" + p.serviceURL
	res := make([]catalog.TemplateEntity, 0, len(items))
	for _, item := range items {
		res = append(res, catalog.TemplateEntity{
			APIVersion: catalog.APIVersionTemplate,
			Kind:       catalog.KindTemplate,
			Metadata: catalog.Metadata{
				Name:        item.ID,
				Title:       item.Name,
				Description: item.Name,
				Tags:        []string{"experimental", "swf"},
				Annotations: map[string]string{
					catalog.AnnotationManagedByLocation:       location,
					catalog.AnnotationManagedByOriginLocation: location,
				},
			},
			Spec: catalog.TemplateSpec{
				Owner:      p.owner,
				Type:       models.WorkflowType,
				Steps:      []catalog.TemplateStep{},
				Parameters: p.TemplateParameters(item, doc),
			},
		})
	}
	return res
}

func dumpYAML(doc *openapi3.T) (string, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return "", err
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
