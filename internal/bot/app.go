// Package bot wires the dialogue controller into the Telegram transport.
package bot

import (
	"fmt"
	"time"

	"saludbot/core/config"
	tg "saludbot/core/telegram"
	tghelpers "saludbot/core/telegram/helpers"
	"saludbot/core/telegram/router"
	"saludbot/internal/dialog"
	"saludbot/internal/generation"
	"saludbot/internal/media"
	"saludbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// App holds the assembled application: config, session store and controller.
type App struct {
	cfg        *config.Config
	sessions   *session.Store
	controller *dialog.Controller
}

// New assembles the application from configuration.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}

	store := session.NewStore()
	gen := generation.NewClient(cfg.Generation)
	lookup := media.NewClient(cfg.Media)

	ctrl := dialog.New(store, gen, lookup,
		time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Media.TimeoutSeconds)*time.Second,
	)

	return &App{
		cfg:        cfg,
		sessions:   store,
		controller: ctrl,
	}, nil
}

// TelegramRunOptions builds the registry, routes and middleware chain.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	reg.SetTextFallback(a.handleText)
	// Unknown callbacks are acknowledged by the router and dropped.
	reg.SetCallbackNotFound(func(tele.Context) error { return nil })

	selections := []dialog.SelectionValue{
		dialog.SelectPediculosis,
		dialog.SelectParasitismo,
		dialog.SelectChangeTopic,
		dialog.SelectKeepTopic,
		dialog.SelectConfirmLeave,
		dialog.SelectConfirmStay,
	}
	for _, v := range selections {
		if err := reg.RegisterCallback(string(v), a.selectionHandler(v)); err != nil {
			return tg.RunOptions{}, fmt.Errorf("bot: register callback %s: %w", v, err)
		}
	}

	routes := router.TextRoutes(reg, nil)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}, nil
}

func (a *App) handleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	actions, err := a.controller.HandleText(ctx, dialog.TextMessage{
		UserID: sender.ID,
		Text:   c.Text(),
	})
	if err != nil {
		return err
	}
	return renderActions(c, actions)
}

func (a *App) selectionHandler(v dialog.SelectionValue) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		actions, err := a.controller.HandleSelection(ctx, dialog.Selection{
			UserID: sender.ID,
			Value:  v,
		})
		if err != nil {
			return err
		}
		return renderActions(c, actions)
	}
}
