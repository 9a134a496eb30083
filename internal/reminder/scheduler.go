package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/contacts"
)

// Sender delivers one reminder.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Failure records a contact whose reminder could not be sent.
type Failure struct {
	Contact contacts.Contact
	Err     error
}

// Result summarises one batch run.
type Result struct {
	Scanned  int
	Eligible int
	Sent     int
	Failures []Failure
	// Saved is true when the table was persisted.
	Saved bool
}

// Scheduler runs reminder batches over a contact store.
type Scheduler struct {
	store      contacts.Store
	sender     Sender
	template   *Template
	inviteLink string
	logger     *zap.Logger

	now func() time.Time
}

func New(store contacts.Store, sender Sender, tmpl *Template, inviteLink string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		store:      store,
		sender:     sender,
		template:   tmpl,
		inviteLink: inviteLink,
		logger:     logger,
		now:        time.Now,
	}
}

// Eligible returns the contacts that would receive a reminder right now.
func (s *Scheduler) Eligible(ctx context.Context) ([]contacts.Contact, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	now := s.now()
	eligible := make([]contacts.Contact, 0)
	for _, c := range list {
		if ShouldSend(c, now) {
			eligible = append(eligible, c)
		}
	}

	return eligible, nil
}

// Run sends every due reminder. A failed send is recorded and the batch moves
// on. Successful sends are stamped with today's date and persisted in a
// single locked update against a fresh copy of the table.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	now := s.now()
	today := now.Format(DateLayout)
	result := &Result{Scanned: len(list)}
	sent := make(map[string]struct{})

	for _, c := range list {
		if !ShouldSend(c, now) {
			continue
		}
		result.Eligible++

		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, Failure{Contact: c, Err: err})
			continue
		}

		if err := s.send(ctx, c); err != nil {
			s.logger.Warn("failed to send reminder",
				zap.String("name", c.Name),
				zap.String("email", c.Email),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, Failure{Contact: c, Err: err})
			continue
		}

		s.logger.Info("reminder sent",
			zap.String("name", c.Name),
			zap.String("email", c.Email),
			zap.Int("cooldown_days", CooldownDays(c.Category)),
		)
		sent[c.Key()] = struct{}{}
		result.Sent++
	}

	if len(sent) == 0 {
		return result, nil
	}

	saved, err := contacts.Update(context.WithoutCancel(ctx), s.store, func(fresh []contacts.Contact) (bool, error) {
		changed := false
		for i := range fresh {
			if _, ok := sent[fresh[i].Key()]; !ok {
				continue
			}
			if fresh[i].LastSent != today {
				fresh[i].LastSent = today
				changed = true
			}
		}
		return changed, nil
	})
	if err != nil {
		return result, fmt.Errorf("persist reminder dates: %w", err)
	}

	result.Saved = saved
	return result, nil
}

func (s *Scheduler) send(ctx context.Context, c contacts.Contact) error {
	msg, err := s.template.Render(c, s.inviteLink)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, msg)
}
