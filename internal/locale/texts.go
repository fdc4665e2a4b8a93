package locale

type Key string

// Page text.
const (
	Title          Key = "title"
	Subtitle       Key = "subtitle"
	AmountLabel    Key = "amount_label"
	AmountHint     Key = "amount_placeholder"
	FromLabel      Key = "from_label"
	ToLabel        Key = "to_label"
	SelectCurrency Key = "select_currency"
	Swap           Key = "swap"
	Submit         Key = "submit"
	Loading        Key = "loading"
	ResultHeading  Key = "result_heading"
	Disclaimer     Key = "disclaimer"
)

// Messages.
const (
	ErrAmount          Key = "err_amount"
	ErrBothCurrencies  Key = "err_both_currencies"
	ErrSameCurrencies  Key = "err_same_currencies"
	ErrConversion      Key = "err_conversion"
	ErrInvalidResponse Key = "err_invalid_response"
	ErrFailed          Key = "err_failed"
	RateUnavailable    Key = "rate_unavailable"
)

type text struct {
	cs string
	en string
}

var texts = map[Key]text{
	Title:          {"Převodník měn", "Currency Converter"},
	Subtitle:       {"Orientační kurzy podle ČNB", "Indicative rates based on the Czech National Bank"},
	AmountLabel:    {"Částka", "Amount"},
	AmountHint:     {"Zadejte částku", "Enter amount"},
	FromLabel:      {"Z měny", "From"},
	ToLabel:        {"Na měnu", "To"},
	SelectCurrency: {"Vyberte měnu", "Select currency"},
	Swap:           {"Prohodit měny", "Swap currencies"},
	Submit:         {"Převést", "Convert"},
	Loading:        {"Převádím…", "Converting…"},
	ResultHeading:  {"Výsledek převodu", "Conversion result"},
	Disclaimer:     {"Kurzy jsou pouze orientační.", "Rates are indicative only."},

	ErrAmount:          {"Zadejte platnou částku", "Please enter a valid amount"},
	ErrBothCurrencies:  {"Vyberte obě měny", "Please select both currencies"},
	ErrSameCurrencies:  {"Vyberte různé měny", "Please select different currencies"},
	ErrConversion:      {"Chyba při převodu měn. Zkuste to znovu.", "Currency conversion error. Please try again."},
	ErrInvalidResponse: {"Neplatná odpověď ze serveru.", "Invalid response from server."},
	ErrFailed:          {"Převod se nezdařil. Zkuste to znovu.", "Conversion failed. Please try again."},
	RateUnavailable:    {"Informace o kurzu jsou dočasně nedostupné", "Exchange rate information temporarily unavailable"},
}

// PageKeys lists every bilingual text node rendered on the page.
var PageKeys = []Key{
	Title, Subtitle, AmountLabel, AmountHint, FromLabel, ToLabel,
	SelectCurrency, Swap, Submit, Loading, ResultHeading, Disclaimer,
}

// Text returns the variant of key for l. Unknown keys render as the key itself.
func Text(l Locale, k Key) string {
	t, ok := texts[k]
	if !ok {
		return string(k)
	}
	return Pick(l, t.cs, t.en)
}
