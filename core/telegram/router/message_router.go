package router

import (
	"time"

	tg "saludbot/core/telegram"
	"saludbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextRoutes builds the handler for plain text updates. Every text message
// flows to the registry's text fallback; the bot has no command table.
func TextRoutes(reg *tg.Registry, unknownText tele.HandlerFunc) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "dialog_text", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if unknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return unknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
