package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"serverless-workflow/backend/pkg/models"
)

// ErrSuperseded is returned by Select when a newer selection was made while
// the jobs were being fetched. The stale result is discarded.
var ErrSuperseded = errors.New("selection superseded")

const (
	Title           = "Timers"
	UnselectedLabel = "No instance selected"
)

// ViewState tells whether an instance is selected
type ViewState string

const (
	ViewUnselected ViewState = "unselected"
	ViewSelected   ViewState = "selected"
)

// Fetcher returns the jobs of a process instance
type Fetcher interface {
	GetInstanceJobs(ctx context.Context, id string) ([]models.Job, error)
}

// View is the rendered table
type View struct {
	Title      string    `json:"title"`
	State      ViewState `json:"state"`
	Message    string    `json:"message,omitempty"`
	InstanceID string    `json:"instanceId,omitempty"`
	Headers    []Header  `json:"headers,omitempty"`
	Rows       []Row     `json:"rows"`
	Error      string    `json:"error,omitempty"`
}

// Table holds the jobs of the selected process instance. Every selection
// starts a new generation; a fetch only lands if its generation is still
// current, so a slow response never overwrites a newer selection.
type Table struct {
	fetcher Fetcher
	now     func() time.Time

	mu         sync.Mutex
	generation uint64
	selected   *models.ProcessInstance
	jobs       []models.Job
	err        error
}

// NewTable creates a table with nothing selected
func NewTable(fetcher Fetcher) *Table {
	return &Table{fetcher: fetcher, now: time.Now}
}

// WithClock overrides the wall clock used when rendering
func (t *Table) WithClock(now func() time.Time) *Table {
	t.now = now
	return t
}

// Select changes the selected instance and fetches its jobs. A nil instance
// clears the selection without fetching.
func (t *Table) Select(ctx context.Context, inst *models.ProcessInstance) error {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.selected = inst
	t.jobs = nil
	t.err = nil
	t.mu.Unlock()

	if inst == nil {
		return nil
	}

	jobs, err := t.fetcher.GetInstanceJobs(ctx, inst.ID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return ErrSuperseded
	}
	if err != nil {
		t.err = err
		return err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	t.jobs = jobs
	return nil
}

// View renders the table at the current wall-clock time
func (t *Table) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.selected == nil {
		return View{
			Title:   Title,
			State:   ViewUnselected,
			Message: UnselectedLabel,
			Rows:    []Row{},
		}
	}

	v := View{
		Title:      Title,
		State:      ViewSelected,
		InstanceID: t.selected.ID,
		Headers:    Headers,
		Rows:       Rows(t.jobs, t.now()),
	}
	if t.err != nil {
		v.Error = t.err.Error()
	}
	return v
}
