package bot

import (
	"fmt"

	tghelpers "saludbot/core/telegram/helpers"
	"saludbot/core/telegram/keyboard"
	"saludbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// renderActions delivers controller actions in order. A failed send aborts the
// remainder so the user never sees a later message without its predecessor.
func renderActions(c tele.Context, actions []dialog.Action) error {
	for _, action := range actions {
		var err error
		switch act := action.(type) {
		case dialog.TextAction:
			err = tghelpers.SendText(c, act.Text)
		case dialog.MenuAction:
			err = tghelpers.SendWithMarkup(c, act.Text, menuMarkup(act.Options))
		case dialog.MediaAction:
			err = tghelpers.SendPhoto(c, act.PhotoURL, act.Caption, linkMarkup(act.Buttons))
		default:
			err = fmt.Errorf("bot: unsupported action %T", action)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func menuMarkup(options []dialog.Option) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, len(options))
	for i, opt := range options {
		btns[i] = keyboard.InlineBtn{Text: opt.Label, Unique: string(opt.Value)}
	}
	return keyboard.InlineButtons(btns)
}

func linkMarkup(buttons []dialog.LinkButton) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	urls := make([]keyboard.URLBtn, len(buttons))
	for i, b := range buttons {
		urls[i] = keyboard.URLBtn{Text: b.Label, URL: b.URL}
	}
	return keyboard.URLButtonsRow(urls)
}
