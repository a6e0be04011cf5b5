package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func durationSeconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	secs := d.Seconds()
	return &secs
}

func agentStats(summary *domain.ReportSummary) []fiber.Map {
	out := make([]fiber.Map, 0, len(summary.Agents))
	for _, agent := range summary.Agents {
		out = append(out, fiber.Map{
			"user_id":                    agent.UserID,
			"username":                   agent.Username,
			"resolved":                   agent.Resolved,
			"average_resolution_seconds": durationSeconds(agent.AverageResolution),
		})
	}
	return out
}
