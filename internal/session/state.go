package session

import "fmt"

// Phase is the coarse protocol position of a session.
type Phase int

const (
	AwaitingUsername Phase = iota
	AwaitingRecipient
	AwaitingRecipientChoice
	Ready
)

func (p Phase) String() string {
	switch p {
	case AwaitingUsername:
		return "AwaitingUsername"
	case AwaitingRecipient:
		return "AwaitingRecipient"
	case AwaitingRecipientChoice:
		return "AwaitingRecipientChoice"
	case Ready:
		return "Ready"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the full protocol state.  Pending carries the ambiguous
// name while the phase is AwaitingRecipientChoice and is empty
// otherwise.
type State struct {
	Phase   Phase
	Pending string
}

func (s State) String() string {
	if s.Phase == AwaitingRecipientChoice {
		return fmt.Sprintf("%s(%s)", s.Phase, s.Pending)
	}
	return s.Phase.String()
}
