package interfaces

import (
	"context"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type ClientRepository interface {
	Get(ctx context.Context, id model.ClientID) (*model.Client, error)
	Put(ctx context.Context, client *model.Client) error
}
