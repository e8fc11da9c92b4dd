// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/mqr-hub/middleware"
	"github.com/danielhkuo/mqr-hub/models"
	"github.com/danielhkuo/mqr-hub/mqr"
)

// MessageHandler serves the weekly message and FAQ flows. Failures talking
// to the content repository are answered with 502.
type MessageHandler struct {
	seq *mqr.Sequencer
}

func NewMessageHandler(seq *mqr.Sequencer) *MessageHandler {
	return &MessageHandler{seq: seq}
}

// NextMessage handles POST /api/v1/mqr-nextmessage/
func (h *MessageHandler) NextMessage(w http.ResponseWriter, r *http.Request) {
	var req models.NextMessageRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.Next(r.Context(), req)
	if err != nil {
		writeError(w, r, err, http.StatusBadGateway)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Next resolves this week's message for the participant.
func (h *MessageHandler) Next(ctx context.Context, req models.NextMessageRequest) (models.NextMessageResponse, error) {
	if err := middleware.Validate(req); err != nil {
		return models.NextMessageResponse{}, err
	}
	reference, err := time.Parse(models.DateLayout, req.EDDOrDOBDate)
	if err != nil {
		return models.NextMessageResponse{}, invalidField("edd_or_dob_date", "Date has wrong format. Use 2006-01-02.")
	}
	phase, err := mqr.ParsePhase(req.SubscriptionType)
	if err != nil {
		return models.NextMessageResponse{}, invalidField("subscription_type", err.Error())
	}

	msg, err := h.seq.NextMessage(ctx, mqr.NextMessageRequest{
		ReferenceDate: reference,
		Phase:         phase,
		Arm:           req.Arm,
		Sequence:      req.Sequence,
		Name:          req.MomName,
	})
	if err != nil {
		slog.Warn("next message not resolved",
			"contact_uuid", req.ContactUUID,
			"run_uuid", req.RunUUID,
			"error", err,
		)
		return models.NextMessageResponse{}, err
	}

	return models.NextMessageResponse{
		Message:       msg.Message.Message,
		IsTemplate:    msg.IsTemplate,
		HasParameters: msg.HasParameters,
		NextSendDate:  msg.NextSendDate.Format(models.DateLayout),
		Tag:           msg.Tag,
	}, nil
}

// FAQ handles POST /api/v1/mqr-faq/
func (h *MessageHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	var req models.FAQRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.FAQMessage(r.Context(), req)
	if err != nil {
		writeError(w, r, err, http.StatusBadGateway)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// FAQMessage resolves one FAQ and the menu of those still unseen.
func (h *MessageHandler) FAQMessage(ctx context.Context, req models.FAQRequest) (models.FAQResponse, error) {
	if err := middleware.Validate(req); err != nil {
		return models.FAQResponse{}, err
	}

	faq, err := h.seq.FAQMessage(ctx, req.Tag, req.FAQNumber, mqr.NewViewed(req.Viewed...))
	if err != nil {
		slog.Warn("faq not resolved",
			"contact_uuid", req.ContactUUID,
			"tag", req.Tag,
			"faq_number", req.FAQNumber,
			"error", err,
		)
		return models.FAQResponse{}, err
	}

	return models.FAQResponse{
		Message:       faq.Message.Message,
		IsTemplate:    faq.IsTemplate,
		HasParameters: faq.HasParameters,
		FAQMenu:       faq.FAQMenu,
		FAQNumbers:    faq.FAQNumbers,
		Viewed:        faq.Viewed.Items(),
	}, nil
}

// FAQMenu handles POST /api/v1/mqr-faq-menu/
func (h *MessageHandler) FAQMenu(w http.ResponseWriter, r *http.Request) {
	var req models.FAQMenuRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.Menu(r.Context(), req)
	if err != nil {
		writeError(w, r, err, http.StatusBadGateway)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Menu lists the FAQ topics for a tag, numbered from menu_offset+1.
func (h *MessageHandler) Menu(ctx context.Context, req models.FAQMenuRequest) (models.FAQMenuResponse, error) {
	if err := middleware.Validate(req); err != nil {
		return models.FAQMenuResponse{}, err
	}

	menu, err := h.seq.FAQMenu(ctx, req.Tag, mqr.Viewed{}, req.MenuOffset)
	if err != nil {
		return models.FAQMenuResponse{}, err
	}
	return models.FAQMenuResponse{Menu: menu.Menu, FAQNumbers: menu.FAQNumbers}, nil
}

func invalidField(name, msg string) error {
	return &middleware.ValidationError{Fields: map[string]string{name: msg}}
}
