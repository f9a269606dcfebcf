package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SendMessageInput struct {
	ToRole  models.Role `json:"toRole" binding:"required"`
	ToID    string      `json:"toId" binding:"required"`
	VisitID string      `json:"visitId"`
	Text    string      `json:"text" binding:"required"`
}

func (s *Service) SendMessage(ctx context.Context, from models.Session, in SendMessageInput) (*models.Message, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", ErrInvalidInput)
	}
	if !in.ToRole.Valid() {
		return nil, fmt.Errorf("%w: unknown recipient role %q", ErrInvalidInput, in.ToRole)
	}
	if _, err := parseID(in.ToID); err != nil {
		return nil, err
	}

	var msg models.Message
	err := mutate(ctx, s, kv.Messages, func(items []models.Message) ([]models.Message, error) {
		msg = models.Message{
			ID:        primitive.NewObjectID(),
			VisitID:   in.VisitID,
			FromRole:  from.Role,
			FromID:    from.ID,
			FromName:  from.Name,
			ToRole:    in.ToRole,
			ToID:      in.ToID,
			Text:      text,
			CreatedAt: s.now(),
		}
		return append(items, msg), nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversation returns the messages exchanged between two accounts, oldest first.
func (s *Service) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	all, err := load[models.Message](ctx, s.store, kv.Messages)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(all, func(m models.Message, _ int) bool {
		return (m.FromID == a && m.ToID == b) || (m.FromID == b && m.ToID == a)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Inbox returns messages addressed to the account, newest first. Ids are
// only unique within a role, so both must match.
func (s *Service) Inbox(ctx context.Context, role models.Role, id string) ([]models.Message, error) {
	all, err := load[models.Message](ctx, s.store, kv.Messages)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(all, func(m models.Message, _ int) bool { return m.ToRole == role && m.ToID == id })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkRead flags a message as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, reader models.Session, messageID string) error {
	oid, err := parseID(messageID)
	if err != nil {
		return err
	}
	return mutate(ctx, s, kv.Messages, func(items []models.Message) ([]models.Message, error) {
		_, idx, ok := lo.FindIndexOf(items, func(m models.Message) bool { return m.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		if items[idx].ToRole != reader.Role || items[idx].ToID != reader.ID {
			return nil, ErrNotOwner
		}
		items[idx].Read = true
		return items, nil
	})
}
