package core

import (
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/aggregate"
)

const (
	fieldEmail = "email"
	fieldName  = "name"
	fieldUser  = "user"

	nameMinLength = 2
	nameMaxLength = 100
)

// ErrFirstEventMustBeUserCreated is returned when a replayed stream does not start
// with a UserCreated event, which indicates a corrupted stream.
var ErrFirstEventMustBeUserCreated = errors.New("first event of a user stream must be " + UserCreatedEventType)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the event-sourced user aggregate. All state is derived from applying its
// ordered event history; mutation methods validate invariants, apply the transition
// in memory and record the event on the uncommitted buffer.
type User struct {
	aggregate.Base

	email     EmailString
	name      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
	createdBy *Actor
	updatedBy *Actor
	deletedBy *Actor
}

// UserState is the flat current-state view of a User, used to build and restore
// queryable snapshot rows.
type UserState struct {
	ID        uuid.UUID
	Email     EmailString
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	CreatedBy *Actor
	UpdatedBy *Actor
	DeletedBy *Actor
	Version   uint
}

// CreateUser validates the input, assigns a fresh identity and raises the
// UserCreated event, leaving the new aggregate at version 1.
func CreateUser(email string, name string, createdBy *Actor, occurredAt time.Time) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, err
	}

	user := &User{Base: aggregate.NewBase(uuid.New())}
	event := BuildUserCreated(user.AggregateID(), email, name, createdBy, occurredAt)

	if err := user.raise(event); err != nil {
		return nil, err
	}

	return user, nil
}

// UserFromHistory reconstructs a user by replaying its persisted event stream in
// ascending version order. Replay only runs the state-transition handler, it never
// re-validates business rules and never re-raises events.
func UserFromHistory(history DomainEvents) (*User, error) {
	if len(history) == 0 {
		return nil, aggregate.ErrEmptyStream
	}

	created, ok := history[0].(UserCreated)
	if !ok {
		return nil, ErrFirstEventMustBeUserCreated
	}

	userID, parseErr := uuid.Parse(created.UserID)
	if parseErr != nil {
		return nil, parseErr
	}

	user := &User{Base: aggregate.NewBase(userID)}

	for _, event := range history {
		if err := user.when(event); err != nil {
			return nil, err
		}

		user.ApplyCommitted()
	}

	return user, nil
}

// RestoreUser rebuilds a user from a queryable snapshot row. Snapshot-sourced users
// carry no uncommitted-event history; they cover legacy rows without events.
func RestoreUser(state UserState) *User {
	return &User{
		Base:      aggregate.RestoreBase(state.ID, state.Version),
		email:     state.Email,
		name:      state.Name,
		createdAt: state.CreatedAt,
		updatedAt: state.UpdatedAt,
		deletedAt: state.DeletedAt,
		createdBy: state.CreatedBy,
		updatedBy: state.UpdatedBy,
		deletedBy: state.DeletedBy,
	}
}

// UpdateEmail changes the user's email address. Updating to the current value is a
// no-op that raises no event and leaves the version unchanged.
func (u *User) UpdateEmail(email string, updatedBy *Actor, occurredAt time.Time) error {
	if u.IsDeleted() {
		return aggregate.BuildValidationError(fieldUser, "cannot update a deleted user")
	}

	if err := validateEmail(email); err != nil {
		return err
	}

	if u.email == email {
		return nil
	}

	previousEmail := u.email
	event := BuildUserUpdated(
		u.AggregateID(),
		UserAttributes{Email: &email},
		UserAttributes{Email: &previousEmail},
		updatedBy,
		occurredAt,
	)

	return u.raise(event)
}

// UpdateName changes the user's display name. Updating to the current value is a
// no-op that raises no event and leaves the version unchanged.
func (u *User) UpdateName(name string, updatedBy *Actor, occurredAt time.Time) error {
	if u.IsDeleted() {
		return aggregate.BuildValidationError(fieldUser, "cannot update a deleted user")
	}

	if err := validateName(name); err != nil {
		return err
	}

	if u.name == name {
		return nil
	}

	previousName := u.name
	event := BuildUserUpdated(
		u.AggregateID(),
		UserAttributes{Name: &name},
		UserAttributes{Name: &previousName},
		updatedBy,
		occurredAt,
	)

	return u.raise(event)
}

// Delete soft-deletes the user, recording the deleting actor. Deleting an already
// deleted user is a no-op.
func (u *User) Delete(deletedBy *Actor, occurredAt time.Time) error {
	if u.IsDeleted() {
		return nil
	}

	event := BuildUserDeleted(u.AggregateID(), deletedBy, occurredAt)

	return u.raise(event)
}

// Email returns the user's current email address.
func (u *User) Email() EmailString {
	return u.email
}

// Name returns the user's current display name.
func (u *User) Name() string {
	return u.name
}

// CreatedAt returns when the user was created.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the user was last changed.
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// DeletedAt returns the soft-delete timestamp, nil while the user is alive.
func (u *User) DeletedAt() *time.Time {
	return u.deletedAt
}

// IsDeleted reports whether the user is soft-deleted.
func (u *User) IsDeleted() bool {
	return u.deletedAt != nil
}

// CreatedBy returns the actor that created the user, nil for system-initiated.
func (u *User) CreatedBy() *Actor {
	return u.createdBy
}

// UpdatedBy returns the actor of the last update, nil for system-initiated.
func (u *User) UpdatedBy() *Actor {
	return u.updatedBy
}

// DeletedBy returns the actor that deleted the user, nil while alive.
func (u *User) DeletedBy() *Actor {
	return u.deletedBy
}

// State returns the flat current-state view used for snapshot rows.
func (u *User) State() UserState {
	return UserState{
		ID:        u.AggregateID(),
		Email:     u.email,
		Name:      u.name,
		CreatedAt: u.createdAt,
		UpdatedAt: u.updatedAt,
		DeletedAt: u.deletedAt,
		CreatedBy: u.createdBy,
		UpdatedBy: u.updatedBy,
		DeletedBy: u.deletedBy,
		Version:   u.Version(),
	}
}

// raise applies the state transition and records the event on the uncommitted buffer.
func (u *User) raise(event DomainEvent) error {
	if err := u.when(event); err != nil {
		return err
	}

	u.Record(event)

	return nil
}

// when is the state-transition handler dispatching on the concrete event type.
// It mutates in-memory fields only: it never appends to the uncommitted buffer
// and never re-validates business rules, because replay trusts the persisted log.
func (u *User) when(event DomainEvent) error {
	switch e := event.(type) {
	case UserCreated:
		u.email = e.Email
		u.name = e.Name
		u.createdAt = e.OccurredAt
		u.updatedAt = e.OccurredAt
		u.createdBy = e.CreatedBy

	case UserUpdated:
		if e.NewValues.Email != nil {
			u.email = *e.NewValues.Email
		}
		if e.NewValues.Name != nil {
			u.name = *e.NewValues.Name
		}
		u.updatedAt = e.OccurredAt
		u.updatedBy = e.UpdatedBy

	case UserDeleted:
		deletedAt := e.OccurredAt
		u.deletedAt = &deletedAt
		u.deletedBy = e.DeletedBy
		u.updatedAt = e.OccurredAt

	default:
		return aggregate.UnknownEventTypeError{EventType: event.EventType()}
	}

	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return aggregate.BuildValidationError(fieldEmail, "malformed email address")
	}

	return nil
}

func validateName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < nameMinLength || length > nameMaxLength {
		return aggregate.BuildValidationError(fieldName, "name length must be between 2 and 100 characters")
	}

	return nil
}
