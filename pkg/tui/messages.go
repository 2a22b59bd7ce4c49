package tui

// action is a backend round-trip started from the keyboard.
type action int

const (
	actionLoad action = iota
	actionSaveOrder
	actionDelete
	actionExport
)

func (a action) String() string {
	switch a {
	case actionSaveOrder:
		return "save order"
	case actionDelete:
		return "delete"
	case actionExport:
		return "export"
	default:
		return "load"
	}
}

// actionDoneMsg reports the end of a round-trip. The model is busy until it arrives.
type actionDoneMsg struct {
	action action
	info   string
	err    error
}
