package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	ResponsesEmptyText  = "No responses yet"
	ResponsesFailedText = "Failed to load responses."
)

// ResponseSummary aggregates every rating of every response.
type ResponseSummary struct {
	Responses     int
	Ratings       int
	AverageRating float64
}

// ResponseController lists the evaluations submitted for the head's
// department.
type ResponseController struct {
	responses *Collection[domain.EvaluationResponse]
}

func NewResponseController(transport ports.Transport, logger *zap.Logger) *ResponseController {
	return &ResponseController{
		responses: NewCollection[domain.EvaluationResponse](transport, "/head/evaluations", ResponsesEmptyText, ResponsesFailedText, logger),
	}
}

func (c *ResponseController) List(ctx context.Context) ListResult[domain.EvaluationResponse] {
	return c.responses.List(ctx)
}

// Summarize averages all ratings in responses. With no ratings the
// average is zero.
func Summarize(responses []domain.EvaluationResponse) ResponseSummary {
	summary := ResponseSummary{Responses: len(responses)}
	total := 0
	for _, response := range responses {
		for _, rating := range response.Ratings {
			total += rating
			summary.Ratings++
		}
	}
	if summary.Ratings > 0 {
		summary.AverageRating = float64(total) / float64(summary.Ratings)
	}
	return summary
}
