package task

import "fmt"

// PanelState is the visibility of the log panel and the action bar
type PanelState int

const (
	// PanelBar shows the action bar only. It is the initial state.
	PanelBar PanelState = iota
	PanelBarAndLogs
	PanelLogs
	PanelNone
)

// PanelEvent drives PanelState transitions
type PanelEvent string

const (
	PanelEventError           PanelEvent = "error"
	PanelEventCompleted       PanelEvent = "completed"
	PanelEventToggleLogs      PanelEvent = "toggle-logs"
	PanelEventToggleButtonBar PanelEvent = "toggle-button-bar"
)

// An error always reveals the logs. Completion hides the action bar and is
// only dispatched for runs that finished without error.
var panelTransitions = map[PanelState]map[PanelEvent]PanelState{
	PanelBar: {
		PanelEventError:           PanelBarAndLogs,
		PanelEventCompleted:       PanelNone,
		PanelEventToggleLogs:      PanelBarAndLogs,
		PanelEventToggleButtonBar: PanelNone,
	},
	PanelBarAndLogs: {
		PanelEventError:           PanelBarAndLogs,
		PanelEventCompleted:       PanelLogs,
		PanelEventToggleLogs:      PanelBar,
		PanelEventToggleButtonBar: PanelLogs,
	},
	PanelLogs: {
		PanelEventError:           PanelLogs,
		PanelEventCompleted:       PanelLogs,
		PanelEventToggleLogs:      PanelNone,
		PanelEventToggleButtonBar: PanelBarAndLogs,
	},
	PanelNone: {
		PanelEventError:           PanelLogs,
		PanelEventCompleted:       PanelNone,
		PanelEventToggleLogs:      PanelLogs,
		PanelEventToggleButtonBar: PanelBar,
	},
}

// Next returns the state reached from s on evt. Unknown events leave the
// state unchanged.
func (s PanelState) Next(evt PanelEvent) PanelState {
	if next, ok := panelTransitions[s][evt]; ok {
		return next
	}
	return s
}

func (s PanelState) LogsVisible() bool {
	return s == PanelLogs || s == PanelBarAndLogs
}

func (s PanelState) ButtonBarVisible() bool {
	return s == PanelBar || s == PanelBarAndLogs
}

func (s PanelState) String() string {
	switch s {
	case PanelBar:
		return "bar"
	case PanelBarAndLogs:
		return "bar+logs"
	case PanelLogs:
		return "logs"
	case PanelNone:
		return "none"
	default:
		return fmt.Sprintf("PanelState(%d)", int(s))
	}
}

// StreamEvents returns the panel events implied by the stream
func StreamEvents(s *Stream) []PanelEvent {
	var evts []PanelEvent
	if s.Error != nil {
		evts = append(evts, PanelEventError)
	}
	if s.Completed && s.Error == nil {
		evts = append(evts, PanelEventCompleted)
	}
	return evts
}

// PanelFor replays the stream events and then the user toggles from the
// initial state
func PanelFor(s *Stream, toggles ...PanelEvent) PanelState {
	state := PanelBar
	for _, evt := range StreamEvents(s) {
		state = state.Next(evt)
	}
	for _, evt := range toggles {
		state = state.Next(evt)
	}
	return state
}
