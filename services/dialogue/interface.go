package dialogue

import (
	"context"

	"schedbot/models"
)

// DialogueService processes one conversation turn: exactly one user
// utterance in, one message and state snapshot out. This is the single
// entry point every front end (chat handler, voice bridge, CLI) calls.
type DialogueService interface {
	ProcessTurn(ctx context.Context, sessionID, utterance string) (*models.TurnResult, error)
}
