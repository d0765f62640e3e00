// Package reminder sends birthday reminders 7 days and 1 day before a person's birthday.
//
// The year markers on the person are the only deduplication: a reminder of one kind is sent at
// most once per person and calendar year, however often the scan runs.
package reminder

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/people-notebook/internal/birthday"
	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
	"gitlab.com/dirk.krummacker/people-notebook/internal/notify"
	"gitlab.com/dirk.krummacker/people-notebook/internal/store"
)

// Days before the birthday at which a reminder goes out.
const (
	WeekBefore = 7
	DayBefore  = 1
)

// People is the part of the store the scheduler works with.
type People interface {
	ListPeople(ctx context.Context) ([]model.Person, error)
	SaveReminderMarks(ctx context.Context, marks []store.ReminderMark) error
}

// Config controls the cadence of the scheduler.
type Config struct {
	Interval   time.Duration    // time between two scans, default 12h
	StartDelay time.Duration    // wait before the first scan
	Location   *time.Location   // zone that defines today's date, default time.Local
	Now        func() time.Time // clock, default time.Now
}

// Result summarizes one scan.
type Result struct {
	Checked int // people with a known birthday
	Sent7d  int
	Sent1d  int
	Failed  int // deliveries that returned an error
	Skipped int // birthdays that cannot form a date
}

// Scheduler periodically scans all people and sends due reminders.
type Scheduler struct {
	people People
	sender notify.Sender
	log    *zap.Logger
	cfg    Config
}

// New constructs a Scheduler from dependencies.
func New(people People, sender notify.Sender, cfg Config, log *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 12 * time.Hour
	}
	if cfg.StartDelay < 0 {
		cfg.StartDelay = 0
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{people: people, sender: sender, log: log.With(zap.String("component", "reminder")), cfg: cfg}
}

// Run scans once after the start delay and then on every interval until ctx is canceled. A
// failing scan is logged and does not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("birthday reminders starting",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("start_delay", s.cfg.StartDelay))

	delay := time.NewTimer(s.cfg.StartDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		s.log.Info("birthday reminders stopping")
		return ctx.Err()
	case <-delay.C:
	}
	s.scanAndLog(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("birthday reminders stopping")
			return ctx.Err()
		case <-ticker.C:
			s.scanAndLog(ctx)
		}
	}
}

func (s *Scheduler) scanAndLog(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("birthday scan panicked", zap.Any("panic", r))
		}
	}()
	res, err := s.Scan(ctx)
	if err != nil {
		s.log.Error("birthday scan failed", zap.Error(err))
		return
	}
	s.log.Info("birthday scan finished",
		zap.Int("checked", res.Checked),
		zap.Int("sent_7d", res.Sent7d),
		zap.Int("sent_1d", res.Sent1d),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped))
}

// Scan checks every person once and sends the reminders that are due today. All marker
// changes of the scan are stored together at the end.
//
// A failed delivery is logged and still sets the marker, so it is not retried.
func (s *Scheduler) Scan(ctx context.Context) (Result, error) {
	var res Result
	today := birthday.Today(s.cfg.Now().In(s.cfg.Location))
	year := today.Year()

	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load people: %w", err)
	}

	var marks []store.ReminderMark
	for i := range people {
		p := &people[i]
		if !p.HasBirthday() {
			continue
		}
		res.Checked++

		next, ok := birthday.NextOccurrence(today, *p.BirthMonth, *p.BirthDay)
		if !ok {
			res.Skipped++
			s.log.Warn("birthday is not a date",
				zap.Int64("person_id", p.Id), zap.Int("day", *p.BirthDay), zap.Int("month", *p.BirthMonth))
			continue
		}

		mark := store.ReminderMark{PersonId: p.Id}
		switch birthday.DaysUntil(today, next) {
		case WeekBefore:
			if !sentIn(p.NotifyYear7d, year) {
				s.deliver(ctx, p, WeekBefore, WeekText(p), &res)
				mark.NotifyYear7d = intPtr(year)
			}
		case DayBefore:
			if !sentIn(p.NotifyYear1d, year) {
				s.deliver(ctx, p, DayBefore, DayText(p), &res)
				mark.NotifyYear1d = intPtr(year)
			}
		}
		if mark.NotifyYear7d != nil || mark.NotifyYear1d != nil {
			marks = append(marks, mark)
		}
	}

	if len(marks) > 0 {
		if err := s.people.SaveReminderMarks(ctx, marks); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Scheduler) deliver(ctx context.Context, p *model.Person, daysBefore int, text string, res *Result) {
	if err := s.sender.Send(ctx, text); err != nil {
		res.Failed++
		s.log.Error("birthday reminder not delivered",
			zap.Int64("person_id", p.Id), zap.Int("days_before", daysBefore), zap.Error(err))
		return
	}
	if daysBefore == WeekBefore {
		res.Sent7d++
	} else {
		res.Sent1d++
	}
	s.log.Info("birthday reminder sent", zap.Int64("person_id", p.Id), zap.Int("days_before", daysBefore))
}

func sentIn(marker *int, year int) bool {
	return marker != nil && *marker == year
}

func intPtr(i int) *int { return &i }

// WeekText is the reminder sent 7 days before the birthday.
func WeekText(p *model.Person) string {
	return fmt.Sprintf("🎉 Через 7 дней День Рождения у %s — %s", displayName(p), birthDate(p))
}

// DayText is the reminder sent the day before the birthday.
func DayText(p *model.Person) string {
	return fmt.Sprintf("🎂 Завтра ДР у %s! %s", displayName(p), birthDate(p))
}

// displayName is escaped because the message is sent with HTML parse mode.
func displayName(p *model.Person) string {
	var parts []string
	for _, part := range []*string{p.FirstName, p.LastName} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, html.EscapeString(strings.TrimSpace(*part)))
		}
	}
	return strings.Join(parts, " ")
}

func birthDate(p *model.Person) string {
	return birthday.FormatDate(*p.BirthDay, *p.BirthMonth, p.BirthYear)
}
