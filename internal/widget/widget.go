package widget

import (
	"context"
	"errors"
	"sync"

	"currency-converter/internal/conversion"
	"currency-converter/internal/currency"
	"currency-converter/internal/datastructs"
	"currency-converter/internal/locale"
	"currency-converter/internal/rates"

	"github.com/sirupsen/logrus"
)

type RateSource interface {
	FetchRates(ctx context.Context) (*datastructs.RateTable, error)
}

type Converter interface {
	Convert(ctx context.Context, req datastructs.ConversionRequest) (*datastructs.ConversionResult, error)
}

// Widget is the state of one converter page. The mutex is never held
// across a network call, so fetches may complete in any order and the last
// one to complete wins.
type Widget struct {
	mu        sync.Mutex
	log       logrus.FieldLogger
	source    RateSource
	converter Converter
	presenter *locale.Presenter

	amount string
	from   string
	to     string

	table           *datastructs.RateTable
	rateText        string
	rateUnavailable bool

	errKey  locale.Key
	result  *datastructs.ConversionResult
	loading bool
}

// New returns a widget with the default currency pair selected. Call
// LoadRates to fetch the first rate table.
func New(log logrus.FieldLogger, source RateSource, converter Converter) *Widget {
	return &Widget{
		log:       log,
		source:    source,
		converter: converter,
		presenter: locale.NewPresenter(locale.Default),
		from:      currency.DefaultFrom,
		to:        currency.DefaultTo,
	}
}

// SetLocale re-renders the page in l. The amount and both selections are
// kept and the rate line is recomputed from the loaded table.
func (w *Widget) SetLocale(l locale.Locale) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.presenter.SetLocale(l)
	if w.table != nil && w.from != "" && w.to != "" {
		w.displayRate(w.from, w.to)
	}
}

func (w *Widget) SetAmount(amount string) {
	w.mu.Lock()
	w.amount = amount
	w.mu.Unlock()
}

// SetSelection changes the selections without fetching rates and reports
// whether either of them changed.
func (w *Widget) SetSelection(from, to string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.from != from || w.to != to
	w.from, w.to = from, to
	return changed
}

// Select changes both currency selections and reloads the rate.
func (w *Widget) Select(ctx context.Context, from, to string) {
	w.mu.Lock()
	w.from, w.to = from, to
	w.mu.Unlock()

	w.LoadRates(ctx)
}

// Swap exchanges the two selections and reloads the rate once.
func (w *Widget) Swap(ctx context.Context) {
	w.mu.Lock()
	w.from, w.to = w.to, w.from
	w.mu.Unlock()

	w.LoadRates(ctx)
}

// LoadRates fetches a fresh rate table for the current selections. A failed
// fetch shows the "rate unavailable" line and leaves the form usable.
func (w *Widget) LoadRates(ctx context.Context) {
	w.mu.Lock()
	from, to := w.from, w.to
	if from == "" || to == "" {
		w.hideRate()
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	table, err := w.source.FetchRates(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.log.Errorln("load exchange rates:", err)
		w.rateText = ""
		w.rateUnavailable = true
		return
	}
	w.table = table
	w.displayRate(from, to)
}

func (w *Widget) displayRate(from, to string) {
	w.rateUnavailable = false
	text, ok := rates.ComputeDisplayRate(w.table, from, to)
	if !ok {
		w.rateText = ""
		return
	}
	w.rateText = text
}

func (w *Widget) hideRate() {
	w.rateText = ""
	w.rateUnavailable = false
}

// Submit validates the form and sends the conversion request. Validation
// failures never reach the network.
func (w *Widget) Submit(ctx context.Context) {
	w.mu.Lock()
	req, err := conversion.Validate(w.amount, w.from, w.to)
	if err != nil {
		var verr *conversion.ValidationError
		if errors.As(err, &verr) {
			w.showError(verr.Key)
		}
		w.mu.Unlock()
		return
	}
	w.loading = true
	w.errKey = ""
	w.result = nil
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.loading = false
		w.mu.Unlock()
	}()

	res, err := w.converter.Convert(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.log.Errorln("convert currency:", err)
		w.showError(locale.ErrConversion)
		return
	}
	if res != nil && res.Success == datastructs.SuccessAbsent {
		w.log.Debug("conversion result carries no success flag, treating it as success")
	}
	if out := conversion.Interpret(res, w.presenter.Locale()); out.Failed() {
		w.showError(out.ErrorKey)
		return
	}
	w.errKey = ""
	w.result = res
}

func (w *Widget) showError(k locale.Key) {
	w.errKey = k
	w.result = nil
}
