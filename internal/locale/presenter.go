package locale

import "currency-converter/internal/currency"

// Option is one entry of a currency select list.
type Option struct {
	Code     string
	Label    string
	Selected bool
}

// Selection holds the currency codes chosen in the two select lists.
type Selection struct {
	From string
	To   string
}

// View is the localized part of the page.
type View struct {
	Lang  Locale
	Texts map[string]string
	From  []Option
	To    []Option
}

// Presenter owns the active locale and renders every bilingual text node
// and both currency lists for it. It is not safe for concurrent use.
type Presenter struct {
	locale Locale
}

func NewPresenter(l Locale) *Presenter {
	return &Presenter{locale: l}
}

func (p *Presenter) Locale() Locale {
	return p.locale
}

// SetLocale switches the active locale. Rendering after the switch keeps
// the selections the caller passes in, so nothing but the text changes.
func (p *Presenter) SetLocale(l Locale) {
	p.locale = l
}

func (p *Presenter) Text(k Key) string {
	return Text(p.locale, k)
}

func (p *Presenter) Render(sel Selection) View {
	v := View{
		Lang:  p.locale,
		Texts: make(map[string]string, len(PageKeys)),
		From:  p.Options(sel.From),
		To:    p.Options(sel.To),
	}
	for _, k := range PageKeys {
		v.Texts[string(k)] = p.Text(k)
	}
	return v
}

// Options builds a select list in the static currency order, headed by the
// "select currency" placeholder. The option whose code equals selected is
// marked; an unknown or empty code leaves the placeholder selected.
func (p *Presenter) Options(selected string) []Option {
	all := currency.All()
	opts := make([]Option, 0, len(all)+1)
	opts = append(opts, Option{Label: p.Text(SelectCurrency)})

	found := false
	for _, c := range all {
		o := Option{
			Code:  c.Code,
			Label: c.Code + " (" + Pick(p.locale, c.NameCS, c.NameEN) + ")",
		}
		if c.Code == selected {
			o.Selected = true
			found = true
		}
		opts = append(opts, o)
	}
	opts[0].Selected = !found
	return opts
}
