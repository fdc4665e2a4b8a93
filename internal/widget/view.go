package widget

import (
	"currency-converter/internal/conversion"
	"currency-converter/internal/locale"
)

type Result struct {
	Text    string `json:"text"`
	Details string `json:"details,omitempty"`
}

// View is everything the page shows, rendered in the active locale.
type View struct {
	Page locale.View `json:"-"`

	Locale  locale.Locale `json:"locale"`
	Amount  string        `json:"amount"`
	From    string        `json:"from"`
	To      string        `json:"to"`
	Rate    string        `json:"rate,omitempty"`
	Error   string        `json:"error,omitempty"`
	Result  *Result       `json:"result,omitempty"`
	Loading bool          `json:"loading"`
}

func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	l := w.presenter.Locale()
	v := View{
		Page:    w.presenter.Render(locale.Selection{From: w.from, To: w.to}),
		Locale:  l,
		Amount:  w.amount,
		From:    w.from,
		To:      w.to,
		Loading: w.loading,
	}

	switch {
	case w.rateUnavailable:
		v.Rate = locale.Text(l, locale.RateUnavailable)
	case w.rateText != "":
		v.Rate = w.rateText
	}

	if w.errKey != "" {
		v.Error = locale.Text(l, w.errKey)
	}
	if w.result != nil {
		out := conversion.Interpret(w.result, l)
		v.Result = &Result{Text: out.Text, Details: out.Details}
	}
	return v
}
