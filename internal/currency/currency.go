package currency

// Base is the currency the rate feed quotes all other rates against.
const Base = "CZK"

// Default pair selected when a page is opened.
const (
	DefaultFrom = "USD"
	DefaultTo   = Base
)

type Currency struct {
	Code   string
	NameCS string
	NameEN string
}

var list = []Currency{
	{Code: "AUD", NameCS: "Australský dolar", NameEN: "Australian Dollar"},
	{Code: "BGN", NameCS: "Bulharský lev", NameEN: "Bulgarian Lev"},
	{Code: "BRL", NameCS: "Brazilský real", NameEN: "Brazilian Real"},
	{Code: "CAD", NameCS: "Kanadský dolar", NameEN: "Canadian Dollar"},
	{Code: "CHF", NameCS: "Švýcarský frank", NameEN: "Swiss Franc"},
	{Code: "CNY", NameCS: "Čínský juan", NameEN: "Chinese Yuan"},
	{Code: "CZK", NameCS: "Česká koruna", NameEN: "Czech Koruna"},
	{Code: "DKK", NameCS: "Dánská koruna", NameEN: "Danish Krone"},
	{Code: "EUR", NameCS: "Euro", NameEN: "Euro"},
	{Code: "GBP", NameCS: "Britská libra", NameEN: "British Pound"},
	{Code: "HKD", NameCS: "Hongkongský dolar", NameEN: "Hong Kong Dollar"},
	{Code: "HUF", NameCS: "Maďarský forint", NameEN: "Hungarian Forint"},
	{Code: "IDR", NameCS: "Indonéská rupie", NameEN: "Indonesian Rupiah"},
	{Code: "ILS", NameCS: "Izraelský šekel", NameEN: "Israeli Shekel"},
	{Code: "INR", NameCS: "Indická rupie", NameEN: "Indian Rupee"},
	{Code: "ISK", NameCS: "Islandská koruna", NameEN: "Icelandic Krona"},
	{Code: "JPY", NameCS: "Japonský jen", NameEN: "Japanese Yen"},
	{Code: "KRW", NameCS: "Jihokorejský won", NameEN: "South Korean Won"},
	{Code: "MXN", NameCS: "Mexické peso", NameEN: "Mexican Peso"},
	{Code: "MYR", NameCS: "Malajsijský ringgit", NameEN: "Malaysian Ringgit"},
	{Code: "NOK", NameCS: "Norská koruna", NameEN: "Norwegian Krone"},
	{Code: "NZD", NameCS: "Novozélandský dolar", NameEN: "New Zealand Dollar"},
	{Code: "PHP", NameCS: "Filipínské peso", NameEN: "Philippine Peso"},
	{Code: "PLN", NameCS: "Polský zlotý", NameEN: "Polish Zloty"},
	{Code: "RON", NameCS: "Rumunský lei", NameEN: "Romanian Leu"},
	{Code: "SEK", NameCS: "Švédská koruna", NameEN: "Swedish Krona"},
	{Code: "SGD", NameCS: "Singapurský dolar", NameEN: "Singapore Dollar"},
	{Code: "THB", NameCS: "Thajský baht", NameEN: "Thai Baht"},
	{Code: "TRY", NameCS: "Turecká lira", NameEN: "Turkish Lira"},
	{Code: "USD", NameCS: "Americký dolar", NameEN: "US Dollar"},
	{Code: "XDR", NameCS: "MMF", NameEN: "IMF"},
	{Code: "ZAR", NameCS: "Jihoafrický rand", NameEN: "South African Rand"},
}

// All returns a copy of the currency list in display order.
func All() []Currency {
	out := make([]Currency, len(list))
	copy(out, list)
	return out
}

// Known reports whether code is in the currency list.
func Known(code string) bool {
	for _, c := range list {
		if c.Code == code {
			return true
		}
	}
	return false
}
