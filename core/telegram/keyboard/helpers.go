package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// URLBtn describes an inline button that opens a link.
type URLBtn struct {
	Text string
	URL  string
}

// InlineButtons builds an inline keyboard where each provided button is placed on its own row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineBtn{b})
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// URLButtonsRow builds an inline keyboard with all link buttons on one row.
func URLButtonsRow(buttons []URLBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	row := make([]tele.InlineButton, len(buttons))
	for i, btn := range buttons {
		row[i] = *markup.URL(btn.Text, btn.URL).Inline()
	}
	markup.InlineKeyboard = [][]tele.InlineButton{row}
	return markup
}
