package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/choresd/internal/model"
	"github.com/sandeepkv93/choresd/internal/storage"
)

// streakWindowDays bounds how far back the streak walk goes.
const streakWindowDays = 30

// Streak counts consecutive kept days for one person ending today. A day
// is kept when the person completed something on it, or when nothing was
// on their plate that day. The streak is zero unless today itself has a
// completion, a day with an open assigned chore breaks the walk, and free
// days only count once an older completion bridges them. Trailing free
// days before the walk's earliest completion therefore never extend the
// streak; with the current assignment standing in for history, a chore's
// pre-completion days would otherwise all count as free and inflate every
// streak to the window bound.
func Streak(person string, doneDays map[string]bool, chores []model.Chore, today time.Time) int {
	if !doneDays[storage.DayKey(today)] {
		return 0
	}

	streak := 0
	bridged := 0
	day := model.DateOf(today)
	for i := 0; i < streakWindowDays; i++ {
		switch {
		case doneDays[storage.DayKey(day)]:
			streak += bridged + 1
			bridged = 0
		case !hadAssignedChore(person, chores, day):
			bridged++
		default:
			return streak
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// hadAssignedChore reports whether the person had at least one chore on
// their plate on the given day. A chore counts when it is assigned to the
// person and was not already completed after that day.
func hadAssignedChore(person string, chores []model.Chore, day time.Time) bool {
	for _, c := range chores {
		if c.AssignedTo != person {
			continue
		}
		if c.LastDone == nil || !model.DateOf(*c.LastDone).After(day) {
			return true
		}
	}
	return false
}

// Streaks computes the current streak for every active assignee, keyed by
// name.
func (s *Service) Streaks(ctx context.Context, now time.Time) (map[string]int, error) {
	assignees, err := s.ListAssignees(ctx, true)
	if err != nil {
		return nil, err
	}
	chores, err := s.ListChores(ctx, now)
	if err != nil {
		return nil, err
	}

	since := storage.DayKey(model.DateOf(now).AddDate(0, 0, -(streakWindowDays + 1)))
	out := make(map[string]int, len(assignees))
	for _, a := range assignees {
		rows, err := s.repo.ListHistory(ctx, storage.HistoryListFilter{DoneBy: a.Name, Since: since})
		if err != nil {
			return nil, err
		}
		doneDays := make(map[string]bool, len(rows))
		for _, row := range rows {
			doneAt, _ := model.ParseInstant(row.DoneAt, now)
			doneDays[storage.DayKey(doneAt)] = true
		}
		out[a.Name] = Streak(a.Name, doneDays, chores, now)
	}
	return out, nil
}
