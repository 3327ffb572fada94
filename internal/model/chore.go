package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority         = errors.New("model: invalid chore priority")
	ErrInvalidCompletionPolicy = errors.New("model: invalid subtask completion policy")
	ErrInvalidPeriod           = errors.New("model: invalid subtask period")
	ErrInvalidWeekday          = errors.New("model: invalid chore weekday")
	ErrInvalidMonthday         = errors.New("model: invalid chore monthday")
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities for display, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type CompletionPolicy string

const (
	CompleteAll CompletionPolicy = "all"
	CompleteAny CompletionPolicy = "any"
)

func (p CompletionPolicy) IsValid() bool {
	switch p {
	case CompleteAll, CompleteAny:
		return true
	default:
		return false
	}
}

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

type Chore struct {
	ID             string
	Name           string
	FrequencyType  FrequencyType
	FrequencyDays  int
	FrequencyTimes int
	// Weekday is Monday=0..Sunday=6, -1 when unset.
	Weekday int
	// Monthday is 1..31, -1 when unset.
	Monthday        int
	ActiveDays      map[string]bool
	ActiveMonthdays map[string]bool
	AssignedTo      string
	UseAlternating  bool
	AlternateWith   string
	LastDone        *time.Time
	LastDoneBy      string
	NotifyWhenDue   bool
	HasSubtasks     bool
	CompletionType  CompletionPolicy
	StreakType      string
	SubtasksPeriod  Period
	Priority        Priority
	Duration        int
	Icon            string
	Description     string
	StartMonth      int
	StartDay        int
}

func (c Chore) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("model: chore id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("model: chore name is required")
	}
	if !c.FrequencyType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequencyType, c.FrequencyType)
	}
	if c.FrequencyDays <= 0 {
		return errors.New("model: chore frequency_days must be positive")
	}
	if c.FrequencyTimes <= 0 {
		return errors.New("model: chore frequency_times must be positive")
	}
	if c.Weekday < -1 || c.Weekday > 6 {
		return fmt.Errorf("%w: %d", ErrInvalidWeekday, c.Weekday)
	}
	if c.Monthday != -1 && (c.Monthday < 1 || c.Monthday > 31) {
		return fmt.Errorf("%w: %d", ErrInvalidMonthday, c.Monthday)
	}
	if !c.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, c.Priority)
	}
	if !c.CompletionType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCompletionPolicy, c.CompletionType)
	}
	if !c.SubtasksPeriod.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, c.SubtasksPeriod)
	}
	if c.LastDone == nil && c.LastDoneBy != "" {
		return errors.New("model: last_done_by must be empty when last_done is unset")
	}
	return nil
}

type Subtask struct {
	ID       int64
	ChoreID  string
	Name     string
	Position int
}

func (s Subtask) Validate() error {
	if strings.TrimSpace(s.ChoreID) == "" {
		return errors.New("model: subtask chore_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("model: subtask name is required")
	}
	return nil
}

type Assignee struct {
	ID     string
	Name   string
	Color  string
	Active bool
}

func (a Assignee) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("model: assignee id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("model: assignee name is required")
	}
	return nil
}
