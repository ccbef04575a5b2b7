package model

// EventRecord is emitted by the model during a round
type EventRecord struct {
	Type    string
	AgentID int64
	Step    int
	Body    any
}

const EventFlip = "Flip"

// FlipEventBody describes a committed state change of one node
type FlipEventBody struct {
	From State
	To   State
}
