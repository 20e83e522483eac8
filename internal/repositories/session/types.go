package session

import "github.com/kngcl/codebattle2-sub001/internal/models"

type SaveSessionInput struct {
	Session *models.Session
}

type GetSessionInput struct {
	SessionID string
}

type GetSessionByChallengeInput struct {
	ChallengeID string
}

type DeleteSessionInput struct {
	SessionID string
}

type ListPublicSessionsInput struct {
}

type ListPublicSessionsOutput struct {
	Sessions []*models.Session
}
