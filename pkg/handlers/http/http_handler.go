package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// AI
	AnalyzeHandler Handler
	AskHandler     Handler

	// Feedback
	RateHandler  Handler
	StatsHandler Handler

	// System
	HealthHandler     Handler
	GetVersionHandler Handler
}
