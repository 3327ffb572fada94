package storage

// Chore mirrors the chores table. Timestamps and day-maps stay raw strings
// here; the service layer owns tolerant parsing and JSON decoding so that
// legacy rows with odd formats never fail a scan.
type Chore struct {
	ID              string
	Name            string
	FrequencyType   string
	FrequencyDays   int
	FrequencyTimes  int
	AssignedTo      string
	Priority        string
	Duration        int
	LastDone        string
	LastDoneBy      string
	Icon            string
	Description     string
	AlternateWith   string
	UseAlternating  bool
	StartMonth      int
	StartDay        int
	Weekday         int
	Monthday        int
	NotifyWhenDue   bool
	ActiveDays      string
	ActiveMonthdays string
	HasSubtasks     bool
	CompletionType  string
	StreakType      string
	SubtasksPeriod  string
}

type HistoryEntry struct {
	ID      int64
	ChoreID string
	DoneBy  string
	DoneAt  string
}

type Subtask struct {
	ID       int64
	ChoreID  string
	Name     string
	Position int
}

type SubtaskCompletion struct {
	ID        int64
	SubtaskID int64
	DoneBy    string
	DoneAt    string
}

type Assignee struct {
	ID     string
	Name   string
	Color  string
	Active bool
}

type ChoreListFilter struct {
	AssignedTo string
	Limit      int
	Offset     int
}

type HistoryListFilter struct {
	ChoreID string
	DoneBy  string
	Since   string
	Limit   int
	Offset  int
}

type AssigneeListFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
