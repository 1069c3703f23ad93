package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/usecase"
	"github.com/secmon-lab/duesoon/pkg/utils/errutil"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// Response messages consumed by the CRM front end
const (
	msgMissingNotificationID = "notification_id é obrigatório"
	msgInvalidBody           = "corpo da requisição inválido"
	msgNotificationNotFound  = "Notificação não encontrada"
	msgUserNotFound          = "Usuário não encontrado"
	msgChannelNotConfigured  = "Webhook URL não configurado"
	msgSent                  = "Notificação enviada para WhatsApp"
	msgAlreadyDelivered      = "Notificação já enviada"
	msgSendFailed            = "Notificação processada, mas WhatsApp falhou"
)

type errorResponse struct {
	Error string `json:"error"`
}

// checkHandler runs one cycle for kind. countField names the JSON field that
// carries the number of work items checked.
func (s *Server) checkHandler(kind types.WorkItemKind, countField string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// the cycle outlives a disconnected caller and is bounded by the job timeout
		report, err := s.dueSoon.Run(context.WithoutCancel(ctx), kind, s.now())
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "due-soon cycle failed", goerr.V("kind", kind)), http.StatusInternalServerError)
			return
		}

		writeJSON(ctx, w, http.StatusOK, map[string]any{
			"success":              true,
			countField:             report.ItemsChecked,
			"notificationsCreated": report.NotificationsCreated,
			"tasksCreated":         report.TasksCreated,
		})
	}
}

type sendNotificationRequest struct {
	NotificationID string `json:"notification_id"`
}

type sendNotificationResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	WhatsAppSent bool   `json:"whatsapp_sent"`
	Error        string `json:"error,omitempty"`
}

func (s *Server) sendNotificationHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid delivery request body", "error", err)
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	if req.NotificationID == "" {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: msgMissingNotificationID})
		return
	}

	result, err := s.delivery.Deliver(ctx, model.NotificationID(req.NotificationID))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingNotificationID):
			writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: msgMissingNotificationID})
		case errors.Is(err, usecase.ErrNotificationNotFound):
			logger.Warn("notification not found", "notification_id", req.NotificationID)
			writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: msgNotificationNotFound})
		case errors.Is(err, usecase.ErrUserNotFound):
			logger.Warn("notification recipient not found", "notification_id", req.NotificationID)
			writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: msgUserNotFound})
		case errors.Is(err, usecase.ErrChannelNotConfigured):
			errutil.Handle(ctx, err, "outbound channel is not configured")
			writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: msgChannelNotConfigured})
		default:
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		}
		return
	}

	resp := sendNotificationResponse{Success: true, WhatsAppSent: result.Sent}
	switch {
	case result.AlreadyDelivered:
		resp.Message = msgAlreadyDelivered
	case result.Sent:
		resp.Message = msgSent
	default:
		resp.Message = msgSendFailed
		resp.Error = result.Error
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
