package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/application/usecase"
	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/pkg/auth"
)

// Compile-time assertion that CardRiskServiceHandler implements CardRiskServiceServer.
var _ CardRiskServiceServer = (*CardRiskServiceHandler)(nil)

// CardRiskServiceHandler implements the gRPC CardRiskServiceServer interface.
type CardRiskServiceHandler struct {
	UnimplementedCardRiskServiceServer
	scoreTransaction  *usecase.ScoreTransaction
	getTransaction    *usecase.GetTransaction
	reviewTransaction *usecase.ReviewTransaction
	getStatistics     *usecase.GetStatistics
	logger            *slog.Logger
}

// NewCardRiskServiceHandler creates a new gRPC handler.
func NewCardRiskServiceHandler(
	scoreTransaction *usecase.ScoreTransaction,
	getTransaction *usecase.GetTransaction,
	reviewTransaction *usecase.ReviewTransaction,
	getStatistics *usecase.GetStatistics,
	logger *slog.Logger,
) *CardRiskServiceHandler {
	return &CardRiskServiceHandler{
		scoreTransaction:  scoreTransaction,
		getTransaction:    getTransaction,
		reviewTransaction: reviewTransaction,
		getStatistics:     getStatistics,
		logger:            logger,
	}
}

// Proto-aligned request/response message types.

// ScoreTransactionRequest represents the proto ScoreTransactionRequest message.
type ScoreTransactionRequest struct {
	TransactionID    string `json:"transaction_id"`
	UserID           string `json:"user_id"`
	Amount           string `json:"amount"`
	MerchantName     string `json:"merchant_name"`
	MerchantCategory string `json:"merchant_category"`
	Country          string `json:"country"`
	City             string `json:"city"`
	PostalCode       string `json:"postal_code"`
	Timestamp        string `json:"timestamp"`
	IPAddress        string `json:"ip_address"`
	DeviceID         string `json:"device_id"`
	CardLastFour     string `json:"card_last_four"`
}

// TransactionMsg represents the proto Transaction message.
type TransactionMsg struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Amount           string   `json:"amount"`
	MerchantName     string   `json:"merchant_name"`
	MerchantCategory string   `json:"merchant_category"`
	Country          string   `json:"country"`
	City             string   `json:"city"`
	PostalCode       string   `json:"postal_code"`
	Timestamp        string   `json:"timestamp"`
	IPAddress        string   `json:"ip_address"`
	DeviceID         string   `json:"device_id"`
	CardLastFour     string   `json:"card_last_four"`
	RiskScore        float64  `json:"risk_score"`
	Flagged          bool     `json:"flagged"`
	RiskFactors      []string `json:"risk_factors"`
	ConfirmedFraud   bool     `json:"confirmed_fraud"`
	ScoredAt         string   `json:"scored_at"`
	ReviewedAt       string   `json:"reviewed_at,omitempty"`
	ReviewedBy       string   `json:"reviewed_by,omitempty"`
}

// FactorMsg represents the proto FactorContribution message.
type FactorMsg struct {
	Factor       string  `json:"factor"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Description  string  `json:"description,omitempty"`
}

// ScoreTransactionResponse represents the proto ScoreTransactionResponse message.
type ScoreTransactionResponse struct {
	Transaction   *TransactionMsg `json:"transaction"`
	Contributions []*FactorMsg    `json:"contributions"`
}

// GetTransactionRequest represents the proto GetTransactionRequest message.
type GetTransactionRequest struct {
	ID string `json:"id"`
}

// GetTransactionResponse represents the proto GetTransactionResponse message.
type GetTransactionResponse struct {
	Transaction *TransactionMsg `json:"transaction"`
}

// ReviewTransactionRequest represents the proto ReviewTransactionRequest message.
// The reviewer is the authenticated caller.
type ReviewTransactionRequest struct {
	TransactionID  string `json:"transaction_id"`
	ConfirmedFraud bool   `json:"confirmed_fraud"`
	Flagged        *bool  `json:"flagged,omitempty"`
}

// ReviewTransactionResponse represents the proto ReviewTransactionResponse message.
type ReviewTransactionResponse struct {
	Transaction *TransactionMsg `json:"transaction"`
}

// GetStatisticsRequest represents the proto GetStatisticsRequest message.
type GetStatisticsRequest struct {
	Window string `json:"window"`
}

// SummaryMsg represents the proto Summary message.
type SummaryMsg struct {
	Total             int32  `json:"total"`
	Flagged           int32  `json:"flagged"`
	ConfirmedFraud    int32  `json:"confirmed_fraud"`
	FlaggedPercentage string `json:"flagged_percentage"`
}

// CategoryMsg represents the proto CategoryBreakdown message.
type CategoryMsg struct {
	Category     string `json:"category"`
	Count        int32  `json:"count"`
	TotalAmount  string `json:"total_amount"`
	FlaggedCount int32  `json:"flagged_count"`
}

// DailyMsg represents the proto DailyStat message.
type DailyMsg struct {
	Date         string `json:"date"`
	Count        int32  `json:"count"`
	FlaggedCount int32  `json:"flagged_count"`
	TotalAmount  string `json:"total_amount"`
}

// GetStatisticsResponse represents the proto GetStatisticsResponse message.
type GetStatisticsResponse struct {
	Window         string         `json:"window"`
	GeneratedAt    string         `json:"generated_at"`
	Summary        *SummaryMsg    `json:"summary"`
	Categories     []*CategoryMsg `json:"categories"`
	Daily          []*DailyMsg    `json:"daily"`
	SkippedRecords int32          `json:"skipped_records"`
}

// ScoreTransaction scores a card transaction against the user's profile.
func (h *CardRiskServiceHandler) ScoreTransaction(ctx context.Context, req *ScoreTransactionRequest) (*ScoreTransactionResponse, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin, auth.RoleIngestor); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var txID uuid.UUID
	if req.TransactionID != "" {
		id, err := uuid.Parse(req.TransactionID)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid transaction_id: %v", err)
		}
		txID = id
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid user_id: %v", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount: %v", err)
	}

	var ts time.Time
	if req.Timestamp != "" {
		ts, err = time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid timestamp: %v", err)
		}
	}

	result, err := h.scoreTransaction.Execute(ctx, dto.ScoreTransactionRequest{
		TransactionID: txID,
		UserID:        userID,
		Amount:        amount,
		MerchantName:  req.MerchantName,
		Category:      req.MerchantCategory,
		Country:       req.Country,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Timestamp:     ts,
		IPAddress:     req.IPAddress,
		DeviceID:      req.DeviceID,
		CardLastFour:  req.CardLastFour,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to score transaction", err)
	}

	contributions := make([]*FactorMsg, 0, len(result.Contributions))
	for _, c := range result.Contributions {
		contributions = append(contributions, &FactorMsg{
			Factor:       c.Factor,
			Weight:       c.Weight,
			Contribution: c.Contribution,
			Description:  c.Description,
		})
	}

	return &ScoreTransactionResponse{
		Transaction:   toTransactionMsg(result),
		Contributions: contributions,
	}, nil
}

// GetTransaction returns a previously scored transaction.
func (h *CardRiskServiceHandler) GetTransaction(ctx context.Context, req *GetTransactionRequest) (*GetTransactionResponse, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleAuditor); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getTransaction.Execute(ctx, dto.GetTransactionRequest{TransactionID: id})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to get transaction", err)
	}

	return &GetTransactionResponse{Transaction: toTransactionMsg(result)}, nil
}

// ReviewTransaction records the caller's verdict on a transaction.
func (h *CardRiskServiceHandler) ReviewTransaction(ctx context.Context, req *ReviewTransactionRequest) (*ReviewTransactionResponse, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin, auth.RoleAnalyst); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(req.TransactionID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid transaction_id: %v", err)
	}

	claims, _ := auth.ClaimsFromContext(ctx)

	result, err := h.reviewTransaction.Execute(ctx, dto.ReviewTransactionRequest{
		TransactionID:  id,
		ConfirmedFraud: req.ConfirmedFraud,
		Flagged:        req.Flagged,
		Reviewer:       claims.Subject,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to review transaction", err)
	}

	h.logger.InfoContext(ctx, "transaction reviewed",
		slog.String("transaction_id", id.String()),
		slog.String("reviewer", claims.Subject),
		slog.Bool("confirmed_fraud", result.ConfirmedFraud),
	)

	return &ReviewTransactionResponse{Transaction: toTransactionMsg(result)}, nil
}

// GetStatistics returns the fraud dashboard reports.
func (h *CardRiskServiceHandler) GetStatistics(ctx context.Context, req *GetStatisticsRequest) (*GetStatisticsResponse, error) {
	if err := auth.Authorize(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleAuditor); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.getStatistics.Execute(ctx, dto.GetStatisticsRequest{Window: req.Window})
	if err != nil {
		return nil, h.toStatus(ctx, "failed to compute statistics", err)
	}

	resp := &GetStatisticsResponse{
		Window:      result.Window,
		GeneratedAt: result.GeneratedAt.Format(time.RFC3339),
		Summary: &SummaryMsg{
			Total:             int32(result.Summary.Total),
			Flagged:           int32(result.Summary.Flagged),
			ConfirmedFraud:    int32(result.Summary.ConfirmedFraud),
			FlaggedPercentage: result.Summary.FlaggedPercentage,
		},
		Categories:     make([]*CategoryMsg, 0, len(result.Categories)),
		Daily:          make([]*DailyMsg, 0, len(result.Daily)),
		SkippedRecords: int32(result.SkippedRecords),
	}
	for _, c := range result.Categories {
		resp.Categories = append(resp.Categories, &CategoryMsg{
			Category:     c.Category,
			Count:        int32(c.Count),
			TotalAmount:  c.TotalAmount,
			FlaggedCount: int32(c.FlaggedCount),
		})
	}
	for _, d := range result.Daily {
		resp.Daily = append(resp.Daily, &DailyMsg{
			Date:         d.Date,
			Count:        int32(d.Count),
			FlaggedCount: int32(d.FlaggedCount),
			TotalAmount:  d.TotalAmount,
		})
	}

	return resp, nil
}

// toStatus maps application errors to gRPC status codes. Internal errors are
// logged and returned without detail.
func (h *CardRiskServiceHandler) toStatus(ctx context.Context, msg string, err error) error {
	switch {
	case errors.Is(err, model.ErrTransactionNotFound), errors.Is(err, model.ErrProfileNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrInvalidTransaction), errors.Is(err, usecase.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

func toTransactionMsg(r dto.TransactionResponse) *TransactionMsg {
	msg := &TransactionMsg{
		ID:               r.ID.String(),
		UserID:           r.UserID.String(),
		Amount:           r.Amount,
		MerchantName:     r.MerchantName,
		MerchantCategory: r.Category,
		Country:          r.Country,
		City:             r.City,
		PostalCode:       r.PostalCode,
		Timestamp:        r.Timestamp.Format(time.RFC3339),
		IPAddress:        r.IPAddress,
		DeviceID:         r.DeviceID,
		CardLastFour:     r.CardLastFour,
		RiskScore:        r.RiskScore,
		Flagged:          r.Flagged,
		RiskFactors:      r.RiskFactors,
		ConfirmedFraud:   r.ConfirmedFraud,
		ScoredAt:         r.ScoredAt.Format(time.RFC3339),
		ReviewedBy:       r.ReviewedBy,
	}
	if r.ReviewedAt != nil {
		msg.ReviewedAt = r.ReviewedAt.Format(time.RFC3339)
	}
	return msg
}
