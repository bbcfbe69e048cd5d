package services

import (
	"context"
	"strings"

	"github.com/alumnet/apiserver/types"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg types.Message) (types.Message, error)
	Conversation(ctx context.Context, userA, userB int64) ([]types.Message, error)
}

// MessageInput is the body of a new message.
type MessageInput struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// MessageService encapsulates direct messaging use-cases.
type MessageService struct {
	repo  MessageRepository
	users UserRepository
}

func NewMessageService(repo MessageRepository, users UserRepository) *MessageService {
	return &MessageService{repo: repo, users: users}
}

// canContact reports whether a user with role from may start a conversation
// with a user with role to. Students may only reach alumni.
func canContact(from, to types.Role) bool {
	if from == types.RoleStudent {
		return to == types.RoleAlumni
	}
	return true
}

// Contacts lists the users the actor may message, sorted by name.
func (s *MessageService) Contacts(ctx context.Context, actor Actor) ([]types.UserSummary, error) {
	filter := types.UserFilter{}
	if actor.Role == types.RoleStudent {
		filter.Role = types.RoleAlumni
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	contacts := make([]types.UserSummary, 0, len(users))
	for _, u := range users {
		if u.ID == actor.ID {
			continue
		}
		contacts = append(contacts, u.Summary())
	}
	return contacts, nil
}

// Send delivers a message from the actor to another user.
func (s *MessageService) Send(ctx context.Context, actor Actor, recipientID int64, input MessageInput) (types.Message, error) {
	if recipientID == actor.ID {
		return types.Message{}, validationError("Cannot message yourself")
	}
	input.Body = strings.TrimSpace(input.Body)
	if err := validateStruct(input); err != nil {
		return types.Message{}, err
	}
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return types.Message{}, translate(err, "User")
	}
	if !canContact(actor.Role, recipient.Role) {
		replying, err := s.hasWrittenTo(ctx, recipientID, actor.ID)
		if err != nil {
			return types.Message{}, err
		}
		if !replying {
			return types.Message{}, forbiddenError("Students can only message alumni")
		}
	}
	return s.repo.Create(ctx, types.Message{
		SenderID:    actor.ID,
		RecipientID: recipientID,
		Body:        input.Body,
	})
}

// hasWrittenTo reports whether sender has already messaged recipient. Anyone
// may reply within a conversation the other side started.
func (s *MessageService) hasWrittenTo(ctx context.Context, sender, recipient int64) (bool, error) {
	convo, err := s.repo.Conversation(ctx, sender, recipient)
	if err != nil {
		return false, err
	}
	for _, m := range convo {
		if m.SenderID == sender {
			return true, nil
		}
	}
	return false, nil
}

// Conversation returns the messages exchanged with another user, oldest
// first.
func (s *MessageService) Conversation(ctx context.Context, actor Actor, otherID int64) ([]types.Message, error) {
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, translate(err, "User")
	}
	return s.repo.Conversation(ctx, actor.ID, otherID)
}
