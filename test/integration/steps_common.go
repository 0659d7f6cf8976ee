package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/passwords"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc      *TestContext
	policy  passwords.Policy
	users   map[string]int64
	lastErr error
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:    tc,
		users: make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset(ctx)
	})

	// Setup steps
	sc.Step(`^a user "([^"]*)" exists$`, s.aUserExists)
	sc.Step(`^the password history life is (-?\d+)$`, s.thePasswordHistoryLifeIs)
	sc.Step(`^user "([^"]*)" has changed password (\d+) times$`, s.userHasChangedPasswordTimes)
	sc.Step(`^user "([^"]*)" is deleted$`, s.userIsDeleted)

	// History steps
	sc.Step(`^user "([^"]*)" changes password to "([^"]*)"$`, s.userChangesPasswordTo)
	sc.Step(`^user id (\d+) changes password to "([^"]*)"$`, s.userIDChangesPasswordTo)
	sc.Step(`^(\d+) concurrent password changes are made for "([^"]*)"$`, s.concurrentPasswordChanges)
	sc.Step(`^user "([^"]*)" should have (\d+) history entries$`, s.userShouldHaveHistoryEntries)
	sc.Step(`^the history of "([^"]*)" should hold passwords "([^"]*)"$`, s.theHistoryShouldHoldPasswords)

	// Expiry steps
	sc.Step(`^I set the password expiry of "([^"]*)" to (-?\d+) days$`, s.iSetThePasswordExpiryTo)
	sc.Step(`^the password expiry of "([^"]*)" should be (\d+) days$`, s.thePasswordExpiryShouldBe)
	sc.Step(`^the password expiry record of "([^"]*)" should not exist$`, s.thePasswordExpiryRecordShouldNotExist)

	// Outcome steps
	sc.Step(`^the operation should succeed$`, s.theOperationShouldSucceed)
	sc.Step(`^the operation should fail with a reference error$`, s.theOperationShouldFailWithReferenceError)
	sc.Step(`^the operation should fail with a configuration error$`, s.theOperationShouldFailWithConfigurationError)
	sc.Step(`^the operation should fail with a negative expiry error$`, s.theOperationShouldFailWithNegativeExpiry)
	sc.Step(`^an audit message "([^"]*)" should be stored$`, s.anAuditMessageShouldBeStored)
}

func (s *StepsContext) userID(login string) (int64, error) {
	id, ok := s.users[login]
	if !ok {
		return 0, fmt.Errorf("user %q was not created in this scenario", login)
	}
	return id, nil
}

// Setup steps

func (s *StepsContext) aUserExists(login string) error {
	var id int64
	err := s.tc.RawDB.QueryRow(`INSERT INTO users (login) VALUES ($1) RETURNING id`, login).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", login, err)
	}
	s.users[login] = id
	return nil
}

func (s *StepsContext) thePasswordHistoryLifeIs(life int) error {
	s.policy = passwords.Policy{HistoryLife: life}
	return nil
}

func (s *StepsContext) userHasChangedPasswordTimes(login string, times int) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}
	for i := 1; i <= times; i++ {
		if _, err := s.tc.Manager.RecordPasswordChange(context.Background(), s.policy, id, fmt.Sprintf("pw-%d", i), time.Time{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) userIsDeleted(login string) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}
	_, err = s.tc.RawDB.Exec(`DELETE FROM users WHERE id = $1`, id)
	return err
}

// History steps

func (s *StepsContext) userChangesPasswordTo(login, password string) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}
	_, s.lastErr = s.tc.Manager.RecordPasswordChange(context.Background(), s.policy, id, password, time.Time{})
	return nil
}

func (s *StepsContext) userIDChangesPasswordTo(id int64, password string) error {
	_, s.lastErr = s.tc.Manager.RecordPasswordChange(context.Background(), s.policy, id, password, time.Time{})
	return nil
}

func (s *StepsContext) concurrentPasswordChanges(n int, login string) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.tc.Manager.RecordPasswordChange(context.Background(), s.policy, id, fmt.Sprintf("concurrent-%d", i), time.Time{})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return fmt.Errorf("concurrent password change failed: %w", err)
		}
	}
	return nil
}

func (s *StepsContext) history(login string) ([]store.HistoryEntry, error) {
	id, err := s.userID(login)
	if err != nil {
		return nil, err
	}
	return s.tc.Manager.History(context.Background(), id)
}

func (s *StepsContext) userShouldHaveHistoryEntries(login string, expected int) error {
	entries, err := s.history(login)
	if err != nil {
		return err
	}
	if len(entries) != expected {
		return fmt.Errorf("expected %d history entries, got %d", expected, len(entries))
	}
	return nil
}

func (s *StepsContext) theHistoryShouldHoldPasswords(login, list string) error {
	entries, err := s.history(login)
	if err != nil {
		return err
	}

	var got []string
	for _, e := range entries {
		got = append(got, e.Password)
	}
	want := strings.Split(list, ",")
	for i := range want {
		want[i] = strings.TrimSpace(want[i])
	}

	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected history %v, got %v", want, got)
	}
	return nil
}

// Expiry steps

func (s *StepsContext) iSetThePasswordExpiryTo(login string, days int) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}
	s.lastErr = s.tc.Manager.SetExpiry(context.Background(), id, days)
	return nil
}

func (s *StepsContext) thePasswordExpiryShouldBe(login string, expected int) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}
	days, err := s.tc.Manager.GetExpiry(context.Background(), id)
	if err != nil {
		return err
	}
	if days != expected {
		return fmt.Errorf("expected expiry %d days, got %d", expected, days)
	}
	return nil
}

func (s *StepsContext) thePasswordExpiryRecordShouldNotExist(login string) error {
	id, err := s.userID(login)
	if err != nil {
		return err
	}
	var count int
	if err := s.tc.RawDB.QueryRow(`SELECT count(*) FROM password_expiry WHERE user_id = $1`, id).Scan(&count); err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected no expiry record, found %d", count)
	}
	return nil
}

// Outcome steps

func (s *StepsContext) theOperationShouldSucceed() error {
	return s.lastErr
}

func (s *StepsContext) theOperationShouldFailWithReferenceError() error {
	if !errors.Is(s.lastErr, passwords.ErrReference) {
		return fmt.Errorf("expected a reference error, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) theOperationShouldFailWithConfigurationError() error {
	if !errors.Is(s.lastErr, passwords.ErrConfiguration) {
		return fmt.Errorf("expected a configuration error, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) theOperationShouldFailWithNegativeExpiry() error {
	if !errors.Is(s.lastErr, passwords.ErrNegativeExpiry) {
		return fmt.Errorf("expected a negative expiry error, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) anAuditMessageShouldBeStored(message string) error {
	var count int
	if err := s.tc.RawDB.QueryRow(`SELECT count(*) FROM messages WHERE message = $1`, message).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("audit message %q not found", message)
	}
	return nil
}
