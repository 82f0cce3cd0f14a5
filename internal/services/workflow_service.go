package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"serverless-workflow/backend/internal/events"
	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/pkg/models"
)

const specsDir = "specs"

var definitionExtensions = []string{".sw.json", ".sw.yaml", ".sw.yml"}

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrInstanceNotFound  = errors.New("process instance not found")
	ErrInvalidURI        = errors.New("invalid workflow uri")
	ErrInvalidDefinition = errors.New("invalid workflow definition")
	ErrGraphQL           = errors.New("data index query failed")
)

// WorkflowService implements WorkflowAPI against the orchestration service:
// workflows come from its management API, instances and jobs from its data
// index, and definitions are files in a local directory it watches.
type WorkflowService struct {
	serviceURL     string
	definitionsDir string
	http           *resty.Client
	publisher      events.Publisher
	logger         *logging.Logger
}

var _ WorkflowAPI = (*WorkflowService)(nil)

// NewWorkflowService creates a new WorkflowService. publisher may be nil, in
// which case definition changes do not trigger a template refresh.
func NewWorkflowService(
	serviceURL, definitionsDir string, publisher events.Publisher, logger *logging.Logger,
) *WorkflowService {
	return &WorkflowService{
		serviceURL:     strings.TrimRight(serviceURL, "/"),
		definitionsDir: definitionsDir,
		http:           resty.New().SetHeader("Accept", "application/json"),
		publisher:      publisher,
		logger:         logger,
	}
}

// ListWorkflows returns the processes deployed in the orchestration service.
func (s *WorkflowService) ListWorkflows(ctx context.Context) (*models.SwfListResult, error) {
	var listed []models.SwfItem
	resp, err := s.http.R().SetContext(ctx).SetResult(&listed).ForceContentType(jsonContentType).
		Get(s.serviceURL + "/management/processes")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, newResponseError(resp)
	}

	items := make([]models.SwfItem, 0, len(listed))
	for _, swf := range listed {
		items = append(items, models.SwfItem{ID: swf.ID, Name: swf.Name})
	}
	return &models.SwfListResult{
		Items:      items,
		Limit:      0,
		Offset:     0,
		TotalCount: len(items),
	}, nil
}

// GetWorkflow returns a process with its source definition.
func (s *WorkflowService) GetWorkflow(ctx context.Context, id string) (*models.SwfItem, error) {
	base := s.serviceURL + "/management/processes/" + url.PathEscape(id)

	var item models.SwfItem
	resp, err := s.http.R().SetContext(ctx).SetResult(&item).ForceContentType(jsonContentType).Get(base)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	if resp.IsError() {
		return nil, newResponseError(resp)
	}

	src, err := s.http.R().SetContext(ctx).SetHeader("Accept", "*/*").Get(base + "/source")
	if err != nil {
		return nil, err
	}
	if src.IsError() {
		return nil, newResponseError(src)
	}

	return &models.SwfItem{
		ID:         id,
		Name:       item.Name,
		Definition: src.String(),
	}, nil
}

// ListInstances returns every process instance known to the data index.
func (s *WorkflowService) ListInstances(ctx context.Context) ([]models.ProcessInstance, error) {
	data, err := queryGraphQL[instancesData](ctx, s, listInstancesQuery, nil)
	if err != nil {
		return nil, err
	}
	if data.ProcessInstances == nil {
		return []models.ProcessInstance{}, nil
	}
	return data.ProcessInstances, nil
}

// GetInstance returns a single process instance.
func (s *WorkflowService) GetInstance(ctx context.Context, id string) (*models.ProcessInstance, error) {
	data, err := queryGraphQL[instancesData](ctx, s, getInstanceQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(data.ProcessInstances) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return &data.ProcessInstances[0], nil
}

// GetInstanceJobs returns the timers of a process instance.
func (s *WorkflowService) GetInstanceJobs(ctx context.Context, id string) ([]models.Job, error) {
	data, err := queryGraphQL[jobsData](ctx, s, getJobsQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if data.Jobs == nil {
		return []models.Job{}, nil
	}
	return data.Jobs, nil
}

// CreateWorkflowDefinition writes content to the definitions directory under
// uri and requests a template refresh.
func (s *WorkflowService) CreateWorkflowDefinition(
	ctx context.Context, uri, content string,
) (*models.SwfItem, error) {
	if err := validateURI(uri); err != nil {
		return nil, err
	}
	header, err := parseDefinition([]byte(content))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.definitionsDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(s.definitionsDir, uri)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write definition: %w", err)
	}

	s.logger.Info("Workflow definition saved",
		logging.WorkflowID(header.ID), "path", path)
	s.refresh(ctx, "create")

	return &models.SwfItem{
		ID:         header.ID,
		Name:       header.Name,
		Definition: content,
	}, nil
}

// DeleteWorkflowDefinition removes every definition file declaring id.
func (s *WorkflowService) DeleteWorkflowDefinition(ctx context.Context, id string) error {
	files, err := s.definitionFiles()
	if err != nil {
		return err
	}

	removed := 0
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		header, err := parseDefinition(raw)
		if err != nil || header.ID != id {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete definition: %w", err)
		}
		removed++
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}

	s.logger.Info("Workflow definition deleted", logging.WorkflowID(id))
	s.refresh(ctx, "delete")
	return nil
}

// GetSpecs returns the files of the specs directory, sorted by path.
func (s *WorkflowService) GetSpecs(_ context.Context) ([]models.SwfSpecFile, error) {
	dir := filepath.Join(s.definitionsDir, specsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.SwfSpecFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	res := make([]models.SwfSpecFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		res = append(res, models.SwfSpecFile{
			Path:    specsDir + "/" + entry.Name(),
			Content: string(raw),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Path < res[j].Path })
	return res, nil
}

func (s *WorkflowService) refresh(ctx context.Context, reason string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.Params{
		Topic:    models.Topic,
		Metadata: map[string]string{"reason": reason},
	})
	if err != nil {
		s.logger.Warn("Template refresh failed", logging.Error(err))
	}
}

func (s *WorkflowService) definitionFiles() ([]string, error) {
	entries, err := os.ReadDir(s.definitionsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var res []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && isDefinitionFile(entry.Name()) {
			res = append(res, filepath.Join(s.definitionsDir, entry.Name()))
		}
	}
	return res, nil
}

type definitionHeader struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// parseDefinition reads the id and name of a JSON or YAML definition
func parseDefinition(raw []byte) (*definitionHeader, error) {
	var header definitionHeader
	if err := yaml.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if header.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidDefinition)
	}
	return &header, nil
}

func validateURI(uri string) error {
	if uri == "" || filepath.Base(uri) != uri || strings.ContainsAny(uri, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	if !isDefinitionFile(uri) {
		return fmt.Errorf("%w: %q must end with one of %v", ErrInvalidURI, uri, definitionExtensions)
	}
	return nil
}

func isDefinitionFile(name string) bool {
	for _, ext := range definitionExtensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}
