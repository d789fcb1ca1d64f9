package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/common/validation"
	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

type FraudReportRequest struct {
	ParticipantID string `json:"participant_id"`
	RaffleID      string `json:"raffle_id"`
	SellerID      string `json:"seller_id"`
	Message       string `json:"message"`
}

// FraudReportDeduplicator keeps at most one report per
// (participant, raffle, seller). A duplicate is a successful no-op.
type FraudReportDeduplicator struct {
	participants repository.ParticipantRepository
	reports      repository.FraudReportRepository
	events       EventPublisher
	now          Clock
	logger       zerolog.Logger
}

func NewFraudReportDeduplicator(participants repository.ParticipantRepository, reports repository.FraudReportRepository, events EventPublisher, now Clock, logger zerolog.Logger) *FraudReportDeduplicator {
	if now == nil {
		now = time.Now
	}
	return &FraudReportDeduplicator{participants: participants, reports: reports, events: events, now: now, logger: logger}
}

func (d *FraudReportDeduplicator) Report(ctx context.Context, req FraudReportRequest) (models.ReportOutcome, error) {
	switch {
	case req.ParticipantID == "":
		return "", errors.NewFatalError("participant id is required")
	case req.RaffleID == "":
		return "", errors.NewFatalError("raffle id is required")
	case req.SellerID == "":
		return "", errors.NewFatalError("seller id is required")
	}
	message, err := validation.Text("message", req.Message, validation.MaxMessageLength, false)
	if err != nil {
		return "", err
	}

	// Only a participant of the reported raffle can be reported.
	participant, err := d.participants.GetByID(ctx, req.ParticipantID)
	if err != nil {
		return "", errors.NewStorageError("get participant", err)
	}
	if participant == nil || participant.RaffleID != req.RaffleID {
		return "", errors.NewNotFoundError("participant", req.ParticipantID)
	}

	existing, err := d.reports.Find(ctx, req.ParticipantID, req.RaffleID, req.SellerID)
	if err != nil {
		return "", errors.NewStorageError("find fraud report", err)
	}
	if existing != nil {
		return models.ReportSkipped, nil
	}

	report := &models.FraudReport{
		ID:            uuid.New().String(),
		ParticipantID: req.ParticipantID,
		RaffleID:      req.RaffleID,
		SellerID:      req.SellerID,
		Message:       message,
		State:         models.FraudReportStatePending,
		CreatedAt:     d.now(),
	}
	if err := d.reports.Insert(ctx, report); err != nil {
		// Lost the race against an identical report.
		if stderrors.Is(err, repository.ErrDuplicateReport) {
			return models.ReportSkipped, nil
		}
		return "", errors.NewStorageError("insert fraud report", err)
	}

	publish(ctx, d.events, d.logger, models.Event{
		Type:          models.EventFraudReported,
		RaffleID:      req.RaffleID,
		SellerID:      req.SellerID,
		ParticipantID: req.ParticipantID,
		Message:       message,
		At:            report.CreatedAt,
	})
	d.logger.Info().
		Str("report_id", report.ID).
		Str("participant_id", req.ParticipantID).
		Str("raffle_id", req.RaffleID).
		Str("seller_id", req.SellerID).
		Msg("fraud report created")

	return models.ReportCreated, nil
}
