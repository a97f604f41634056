package models

// State is a node of the client session state machine.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateReady
	StateExplaining
	StateChatCreating
	StateViewingExplanation
	StateChatting
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateUploading:          "uploading",
	StateReady:              "ready",
	StateExplaining:         "explaining",
	StateChatCreating:       "chat-creating",
	StateViewingExplanation: "viewing-explanation",
	StateChatting:           "chatting",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Panel returns the panel visible while in s.
func (s State) Panel() Panel {
	switch s {
	case StateReady, StateExplaining, StateChatCreating:
		return PanelActions
	case StateViewingExplanation:
		return PanelResults
	case StateChatting:
		return PanelChat
	default:
		return PanelNone
	}
}

// Panel is the visible section of the UI.
type Panel string

const (
	PanelNone    Panel = "none"
	PanelActions Panel = "actions"
	PanelResults Panel = "results"
	PanelChat    Panel = "chat"
)
