package conversion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"currency-converter/internal/datastructs"
	"currency-converter/internal/locale"

	"github.com/shopspring/decimal"
)

// ValidationError is an input error shown inline next to the form.
type ValidationError struct {
	Key locale.Key
}

func (e *ValidationError) Error() string {
	return "validation: " + locale.Text(locale.EN, e.Key)
}

// Validate checks the form in a fixed order and stops at the first failure:
// a positive finite amount, both currencies chosen, and different currencies.
func Validate(amount, from, to string) (datastructs.ConversionRequest, error) {
	value, ok := parseAmount(amount)
	if !ok {
		return datastructs.ConversionRequest{}, &ValidationError{Key: locale.ErrAmount}
	}
	if from == "" || to == "" {
		return datastructs.ConversionRequest{}, &ValidationError{Key: locale.ErrBothCurrencies}
	}
	if from == to {
		return datastructs.ConversionRequest{}, &ValidationError{Key: locale.ErrSameCurrencies}
	}
	return datastructs.ConversionRequest{
		FromCurrency: from,
		Amount:       value,
		ToCurrency:   to,
	}, nil
}

func parseAmount(s string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

// Outcome is what the result panel shows for a webhook answer.
type Outcome struct {
	// ErrorKey is set when the answer must be shown as a failure.
	ErrorKey locale.Key
	Text     string
	Details  string
}

func (o Outcome) Failed() bool {
	return o.ErrorKey != ""
}

// Interpret picks the text for res in locale l. A missing success flag is
// accepted as success for compatibility with the webhook.
func Interpret(res *datastructs.ConversionResult, l locale.Locale) Outcome {
	if res == nil {
		return Outcome{ErrorKey: locale.ErrInvalidResponse}
	}
	if res.Success == datastructs.SuccessFalse {
		return Outcome{ErrorKey: locale.ErrFailed}
	}
	return Outcome{
		Text:    resultText(res, l),
		Details: rateDetails(res),
	}
}

func resultText(res *datastructs.ConversionResult, l locale.Locale) string {
	infoCS, okCS := res.InfoCS.Text()
	infoEN, okEN := res.InfoEN.Text()
	if okCS && okEN {
		return locale.Pick(l, infoCS, infoEN)
	}

	converted, ok1 := res.ConvertedAmount.Text()
	original, ok2 := res.OriginalAmount.Text()
	from, ok3 := res.FromCurrency.Text()
	to, ok4 := res.ToCurrency.Text()
	if ok1 && ok2 && ok3 && ok4 {
		if l == locale.EN {
			return fmt.Sprintf("For %s %s you will get %s %s.", original, from, converted, to)
		}
		return fmt.Sprintf("Za %s %s dostanete %s %s.", original, from, converted, to)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Raw, "", "  "); err != nil {
		return string(res.Raw)
	}
	return buf.String()
}

func rateDetails(res *datastructs.ConversionResult) string {
	date, ok := res.ConversionDate.Text()
	if !ok {
		return ""
	}
	if info, ok := res.RateInfo.Text(); ok {
		return fmt.Sprintf("%s (%s)", info, date)
	}
	if rate, ok := res.ExchangeRate.Text(); ok {
		from, _ := res.FromCurrency.Text()
		to, _ := res.ToCurrency.Text()
		return fmt.Sprintf("1 %s = %s %s (%s)", from, rate, to, date)
	}
	return ""
}
