package interfaces

import (
	"context"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

// OutboundChannel posts a composed message to an external messaging system.
// An error means the message was not accepted.
type OutboundChannel interface {
	Send(ctx context.Context, msg *model.OutboundMessage) error
}
