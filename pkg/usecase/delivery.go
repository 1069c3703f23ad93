package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/service/metrics"
	"github.com/secmon-lab/duesoon/pkg/utils/errutil"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// DeliveryUseCase forwards stored notifications to the outbound channel
type DeliveryUseCase struct {
	repo    interfaces.Repository
	channel interfaces.OutboundChannel
	mirror  interfaces.OutboundChannel
	labels  *model.LabelTable
	metrics *metrics.Metrics
	now     func() time.Time
}

type deliveryOption func(*DeliveryUseCase)

func withDeliveryMirror(ch interfaces.OutboundChannel) deliveryOption {
	return func(uc *DeliveryUseCase) { uc.mirror = ch }
}

func withDeliveryMetrics(m *metrics.Metrics) deliveryOption {
	return func(uc *DeliveryUseCase) { uc.metrics = m }
}

func withDeliveryClock(now func() time.Time) deliveryOption {
	return func(uc *DeliveryUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// NewDeliveryUseCase creates the adapter. channel may be nil, in which case
// Deliver fails with ErrChannelNotConfigured.
func NewDeliveryUseCase(repo interfaces.Repository, channel interfaces.OutboundChannel, labels *model.LabelTable, opts ...deliveryOption) *DeliveryUseCase {
	if labels == nil {
		labels = model.DefaultLabelTable()
	}
	uc := &DeliveryUseCase{
		repo:    repo,
		channel: channel,
		labels:  labels,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Deliver posts the notification to the outbound channel and marks it
// delivered on success. A rejected or failed post is reported in the result
// with Sent=false and no error.
func (uc *DeliveryUseCase) Deliver(ctx context.Context, id model.NotificationID) (*model.DeliveryResult, error) {
	result, err := uc.deliver(ctx, id)
	if err != nil {
		uc.metrics.RecordDelivery(nil)
		return nil, err
	}
	uc.metrics.RecordDelivery(result)
	return result, nil
}

func (uc *DeliveryUseCase) deliver(ctx context.Context, id model.NotificationID) (*model.DeliveryResult, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrMissingNotificationID, "notification ID is required")
	}

	logger := logging.From(ctx).With("notification_id", id)

	n, err := uc.repo.Notification().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotificationNotFound, "notification not found", goerr.V(NotificationIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V(NotificationIDKey, id))
	}

	user, err := uc.repo.User().Get(ctx, n.RecipientID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrUserNotFound, "recipient not found",
				goerr.V(NotificationIDKey, id),
				goerr.V(UserIDKey, n.RecipientID))
		}
		return nil, goerr.Wrap(err, "failed to get recipient",
			goerr.V(NotificationIDKey, id),
			goerr.V(UserIDKey, n.RecipientID))
	}

	var client *model.Client
	if n.ClientID != "" {
		c, err := uc.repo.Client().Get(ctx, n.ClientID)
		if err != nil {
			logger.Warn("failed to get client, sending without client data",
				"client_id", n.ClientID,
				"error", err)
		} else {
			client = c
		}
	}

	if n.Delivered {
		logger.Info("notification already delivered")
		return &model.DeliveryResult{NotificationID: id, Sent: true, AlreadyDelivered: true}, nil
	}

	if uc.channel == nil {
		return nil, goerr.Wrap(ErrChannelNotConfigured, "outbound channel is not configured", goerr.V(NotificationIDKey, id))
	}

	msg := buildOutboundMessage(n, user, client, uc.labels)

	if err := uc.channel.Send(ctx, msg); err != nil {
		logger.Warn("outbound channel failed, notification stays undelivered",
			"recipient_label", msg.RecipientLabel,
			"category", n.Category,
			"error", err)
		return &model.DeliveryResult{NotificationID: id, Sent: false, Error: channelErrorText(err)}, nil
	}

	logger.Info("notification sent", "recipient_label", msg.RecipientLabel, "category", n.Category)

	if uc.mirror != nil {
		if err := uc.mirror.Send(ctx, msg); err != nil {
			logger.Warn("mirror channel failed", "error", err)
		}
	}

	changed, err := uc.repo.Notification().MarkDelivered(ctx, id, uc.now())
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to mark notification delivered", goerr.V(NotificationIDKey, id)),
			"notification was sent but could not be marked delivered")
	} else if !changed {
		logger.Info("notification was marked delivered concurrently")
	}

	return &model.DeliveryResult{NotificationID: id, Sent: true}, nil
}

// DeliverPending retries up to limit undelivered notifications created at or
// after since, oldest first. A failing notification does not stop the rest;
// hard errors are returned joined.
func (uc *DeliveryUseCase) DeliverPending(ctx context.Context, since time.Time, limit int) ([]*model.DeliveryResult, error) {
	pending, err := uc.repo.Notification().ListUndelivered(ctx, since, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list undelivered notifications",
			goerr.V("since", since),
			goerr.V("limit", limit))
	}

	var (
		results []*model.DeliveryResult
		errs    []error
	)
	for _, n := range pending {
		result, err := uc.Deliver(ctx, n.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}

	logging.From(ctx).Info("pending notifications processed",
		"pending", len(pending),
		"failed", len(errs))

	return results, errors.Join(errs...)
}

func channelErrorText(err error) string {
	var chErr *model.ChannelError
	if errors.As(err, &chErr) {
		return chErr.Error()
	}
	return err.Error()
}

// composeText builds the message body shown to the recipient
func composeText(label string, user *model.User, clientName, message string) string {
	text := "Notificação: " + label + "\nResponsável: " + user.Name
	if clientName != "" {
		text += "\nCliente: " + clientName
	}
	return text + "\nMensagem: " + message
}

func buildOutboundMessage(n *model.Notification, user *model.User, client *model.Client, labels *model.LabelTable) *model.OutboundMessage {
	label := labels.Label(n.Category)

	var clientName, clientPhone, clientWhatsApp string
	if client != nil {
		clientName = client.ContactName
		clientPhone = client.ContactPhone()
		clientWhatsApp = client.WhatsApp
	}

	recipientPhone := clientPhone
	recipientLabel := model.RecipientLabelClient
	if recipientPhone == "" {
		recipientPhone = model.DigitsOnly(user.Phone)
		recipientLabel = model.RecipientLabelResponsible
	}

	text := composeText(label, user, clientName, n.Message)

	return &model.OutboundMessage{
		UserName:            user.Name,
		UserEmail:           user.Email,
		UserPhone:           user.Phone,
		UserLabel:           model.RecipientLabelResponsible,
		ClientID:            string(n.ClientID),
		ClientName:          clientName,
		ClientPhone:         clientPhone,
		ClientWhatsApp:      clientWhatsApp,
		RecipientPhone:      recipientPhone,
		RecipientLabel:      recipientLabel,
		CategoryLabel:       label,
		NotificationTitle:   n.Title,
		NotificationMessage: text,
		Message:             text,
		NotificationKind:    n.Kind.String(),
		NotificationID:      string(n.ID),
		Timestamp:           n.CreatedAt.UTC().Format(time.RFC3339),
		WhatsAppText:        text,
	}
}
