package task

import (
	"encoding/json"
	"net/url"
	"strings"

	"serverless-workflow/backend/pkg/models"
)

// Step is a declared step overlaid with its live state and the task output
type Step struct {
	models.TaskStep
	StepState
	Output map[string]any `json:"output,omitempty"`
}

// MergeSteps overlays the declared steps of the task with the live state of
// the stream. Steps the stream has not reported keep the open status.
func MergeSteps(s *Stream) []Step {
	if s == nil || s.Task == nil {
		return []Step{}
	}

	res := make([]Step, 0, len(s.Task.Spec.Steps))
	for _, decl := range s.Task.Spec.Steps {
		step := Step{
			TaskStep:  decl,
			StepState: StepState{Status: models.TaskStatusOpen},
			Output:    s.Output,
		}
		if live, ok := s.Steps[decl.ID]; ok && live != nil {
			step.StepState = *live
		}
		res = append(res, step)
	}
	return res
}

// ActiveStep returns the index of the last step that is no longer open,
// or 0 when every step is still open
func ActiveStep(steps []Step) int {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Status != models.TaskStatusOpen {
			return i
		}
	}
	return 0
}

// ProcessInstanceID returns the process instance started by the task, read
// from the first step carrying an output
func ProcessInstanceID(steps []Step) string {
	for _, step := range steps {
		if step.Output == nil {
			continue
		}
		id, _ := step.Output["processInstanceId"].(string)
		return id
	}
	return ""
}

// WorkflowID returns the workflow a task runs, read from the first step
// whose input names one
func WorkflowID(steps []Step) string {
	for _, step := range steps {
		if id, _ := step.Input["swfId"].(string); id != "" {
			return id
		}
	}
	return ""
}

// StartOverURL links back to the originating template with the previous
// form values pre-filled. It is empty when the template is unknown.
func StartOverURL(task *models.Task) string {
	tmpl := task.Template()
	if tmpl == nil || tmpl.Namespace == "" || tmpl.Name == "" {
		return ""
	}

	params := task.Spec.Parameters
	if params == nil {
		params = map[string]any{}
	}
	formData, err := json.Marshal(params)
	if err != nil {
		return ""
	}

	query := url.Values{"formData": {string(formData)}}.Encode()
	return "/templates/" + url.PathEscape(tmpl.Namespace) + "/" + url.PathEscape(tmpl.Name) +
		"?" + strings.ReplaceAll(query, "+", "%20")
}
