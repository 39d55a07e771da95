package watcher

import (
	"time"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

var eventTypeNames = [...]string{
	EventCreate: "create",
	EventModify: "modify",
	EventDelete: "delete",
	EventRename: "rename",
}

func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventTypeNames) {
		return "unknown"
	}
	return eventTypeNames[e]
}

// FileEvent records one change to a mask or sequence frame under a
// watched landscape tree.
type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Batch size maps inversely to rescan priority: one or two touched
// masks mean someone is iterating on artwork and wants a fast refresh,
// while a bulk frame import can settle at the back of the queue.
const (
	bulkImportSize = 10
	burstSize      = 3
)

type EventClassifier struct{}

func NewEventClassifier() *EventClassifier {
	return &EventClassifier{}
}

func (c *EventClassifier) ClassifyBatch(events []FileEvent) int {
	switch n := len(events); {
	case n > bulkImportSize:
		return 0
	case n >= burstSize:
		return 1
	default:
		return 2
	}
}
