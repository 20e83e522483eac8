package presence

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// Config holds configuration for a presence tracker
type Config struct {
	// SessionID is the session the tracker belongs to
	SessionID string

	// ParticipantID is the local participant publishing updates
	ParticipantID string

	// Transport carries outbound presence envelopes
	Transport transport.Transport

	// Clock stamps updates
	Clock clock.Clock

	// TTL is how long an unrefreshed entry stays visible
	// (default models.PresenceTTL)
	TTL time.Duration

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// PublishInput contains the local cursor position to broadcast
type PublishInput struct {
	Line   int
	Column int

	// Selection is the selected range, if any
	Selection *models.SelectionRange
}

// PublishOutput contains the update that was broadcast
type PublishOutput struct {
	Update *models.PresenceUpdate
}
