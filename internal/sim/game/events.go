package game

// Event types written to the journal.
const (
	EventDeath       = "DEATH"
	EventReset       = "RESET"
	EventPlaced      = "STRUCTURE_PLACED"
	EventCollected   = "COLLECTED"
	EventSaved       = "SAVED"
	EventSaveFailed  = "SAVE_FAILED"
	EventLoaded      = "LOADED"
	EventLoadFailed  = "LOAD_FAILED"
	EventLoadDiscard = "LOAD_DISCARDED"
)

// Event is one durable journal record.
type Event struct {
	Tick   uint64  `json:"tick"`
	Type   string  `json:"type"`
	Hours  float64 `json:"hours"`
	HP     float64 `json:"hp"`
	ID     string  `json:"id,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	Slot   int64   `json:"slot,omitempty"`
	Detail string  `json:"detail,omitempty"`

	// SavedHP and Structures describe the snapshot a SAVED or LOADED event carried.
	SavedHP    *float64 `json:"saved_hp,omitempty"`
	Structures int      `json:"structures,omitempty"`
}

type EventLogger interface {
	WriteEvent(e Event) error
}

const (
	NoticeInfo  = "info"
	NoticeWarn  = "warn"
	NoticeError = "error"
)

// Notice is a user-visible message, e.g. the outcome of a save or load.
type Notice struct {
	Level string `json:"level"`
	Op    Op     `json:"op,omitempty"`
	Text  string `json:"text"`
}

type Notifier interface {
	Notify(n Notice)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(Notice)

func (f NotifyFunc) Notify(n Notice) { f(n) }
