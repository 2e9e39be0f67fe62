package pipeline

import "fmt"

// Action identifies what the pipeline does with the selected records.
type Action int

// Supported actions.
const (
	ActionList Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// RunPoint says when an action executes relative to selection.
type RunPoint int

const (
	// RunBeforeSelection actions (create) do not operate on selected
	// records at all.
	RunBeforeSelection RunPoint = iota
	// RunAfterSelection actions operate on the filtered, ordered batch.
	RunAfterSelection
)

// actionSpec carries the static shape of each action: its name, how many
// action arguments it requires, whether it mutates server state, and its
// run point. Dispatch happens through a single switch in Runner.Run; there
// is no reflection or name-based lookup.
type actionSpec struct {
	name     string
	minArgs  int
	mutates  bool
	runPoint RunPoint
}

var actionSpecs = map[Action]actionSpec{
	ActionList:   {name: "list", minArgs: 0, mutates: false, runPoint: RunAfterSelection},
	ActionCreate: {name: "create", minArgs: 1, mutates: true, runPoint: RunBeforeSelection},
	ActionUpdate: {name: "update", minArgs: 1, mutates: true, runPoint: RunAfterSelection},
	ActionDelete: {name: "delete", minArgs: 0, mutates: true, runPoint: RunAfterSelection},
}

func (a Action) spec() actionSpec {
	s, ok := actionSpecs[a]
	if !ok {
		return actionSpec{name: fmt.Sprintf("action(%d)", int(a))}
	}
	return s
}

// String returns the action's user-facing name.
func (a Action) String() string { return a.spec().name }

// Mutates reports whether the action changes server state and therefore
// needs a confirmation token.
func (a Action) Mutates() bool { return a.spec().mutates }

// Point returns when the action runs relative to selection.
func (a Action) Point() RunPoint { return a.spec().runPoint }
