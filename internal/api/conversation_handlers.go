package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bibliobot/bibliobot-server/internal/conversation"
	domainerrors "github.com/bibliobot/bibliobot-server/internal/errors"
)

func (s *Server) registerConversationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "postTurn",
		Method:      http.MethodPost,
		Path:        "/api/v1/conversations/{user}/turns",
		Summary:     "Send a conversation turn",
		Description: "Feeds one user message or button action to the catalog conversation and returns the reply",
		Tags:        []string{"Conversation"},
	}, s.handlePostTurn)

	huma.Register(s.api, huma.Operation{
		OperationID:   "resetConversation",
		Method:        http.MethodDelete,
		Path:          "/api/v1/conversations/{user}",
		Summary:       "Reset a conversation",
		Description:   "Forgets the session of a user",
		Tags:          []string{"Conversation"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleResetConversation)
}

// TurnRequest is one incoming message or button press.
type TurnRequest struct {
	Text             string `json:"text,omitempty" maxLength:"1024" doc:"Free text typed by the user"`
	Action           string `json:"action,omitempty" maxLength:"512" doc:"Button payload; wins over text"`
	DisplayedMessage string `json:"displayed_message,omitempty" maxLength:"8192" doc:"Text of the message the button was attached to"`
}

// TurnInput contains parameters for posting a turn.
type TurnInput struct {
	User string `path:"user" minLength:"1" maxLength:"128" doc:"Opaque user identifier"`
	Body TurnRequest
}

// TurnOutput wraps the rendered reply for Huma.
type TurnOutput struct {
	Body conversation.Reply
}

// ConversationUserInput addresses one user's conversation.
type ConversationUserInput struct {
	User string `path:"user" minLength:"1" maxLength:"128" doc:"Opaque user identifier"`
}

func (s *Server) handlePostTurn(ctx context.Context, input *TurnInput) (*TurnOutput, error) {
	if s.services.TurnLimiter != nil && !s.services.TurnLimiter.Allow(input.User) {
		s.logger.Warn("turn rate limit exceeded", "user_id", input.User)
		return nil, toAPIError(domainerrors.RateLimited("Too many messages. Please slow down."))
	}

	reply, err := s.services.Conversation.Handle(ctx, conversation.Turn{
		UserID:           input.User,
		Text:             input.Body.Text,
		Action:           input.Body.Action,
		DisplayedMessage: input.Body.DisplayedMessage,
	})
	if err != nil {
		s.logger.Error("turn failed", "user_id", input.User, "error", err)
		return nil, toAPIError(err)
	}

	return &TurnOutput{Body: *reply}, nil
}

func (s *Server) handleResetConversation(ctx context.Context, input *ConversationUserInput) (*struct{}, error) {
	if err := s.services.Conversation.Reset(ctx, input.User); err != nil {
		s.logger.Error("conversation reset failed", "user_id", input.User, "error", err)
		return nil, toAPIError(err)
	}
	return nil, nil
}
