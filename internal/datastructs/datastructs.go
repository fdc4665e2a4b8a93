package datastructs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrUnexpectedShape is returned when a payload is neither an object nor a
// non-empty list whose first element is an object.
var ErrUnexpectedShape = errors.New("unexpected payload shape")

type RateEntry struct {
	Unit     float64
	MidPrice float64
}

// RateTable is the rate list quoted against the base currency.
type RateTable struct {
	Rates     map[string]RateEntry
	DateLabel string
}

// Entry returns the rate entry for code. Entries with a non-positive or
// non-finite unit or price are reported as missing.
func (t *RateTable) Entry(code string) (RateEntry, bool) {
	if t == nil || code == "" {
		return RateEntry{}, false
	}
	e, ok := t.Rates[code]
	if !ok || !usable(e.Unit) || !usable(e.MidPrice) {
		return RateEntry{}, false
	}
	return e, true
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// FxRates mirrors a single rate list of the kurzy.cz feed.
type FxRates struct {
	Date  string `json:"denc"`
	Rates map[string]struct {
		Unit     float64 `json:"jednotka"`
		MidPrice float64 `json:"dev_stred"`
	} `json:"kurzy"`
}

// DecodeRateTable accepts either a rate list object or an array whose first
// element is the rate list.
func DecodeRateTable(data []byte) (*RateTable, error) {
	obj, err := firstObject(data)
	if err != nil {
		return nil, err
	}
	var fx FxRates
	if err := json.Unmarshal(obj, &fx); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	table := &RateTable{
		Rates:     make(map[string]RateEntry, len(fx.Rates)),
		DateLabel: fx.Date,
	}
	for code, r := range fx.Rates {
		table.Rates[code] = RateEntry{Unit: r.Unit, MidPrice: r.MidPrice}
	}
	return table, nil
}

// ConversionRequest is sent to the webhook wrapped in a single-element list.
type ConversionRequest struct {
	FromCurrency string  `json:"fromCurrency"`
	Amount       float64 `json:"Units"`
	ToCurrency   string  `json:"toCurrency"`
}

func (r ConversionRequest) MarshalBody() ([]byte, error) {
	return json.Marshal([]ConversionRequest{r})
}

type SuccessFlag int

const (
	// SuccessAbsent: the webhook omitted the field. Treated as success.
	SuccessAbsent SuccessFlag = iota
	SuccessTrue
	// SuccessFalse covers false and any other non-true value.
	SuccessFalse
)

// ConversionResult is the webhook answer. Its shape is owned by the webhook,
// so every field is optional.
type ConversionResult struct {
	Success         SuccessFlag
	InfoCS          Field
	InfoEN          Field
	ConvertedAmount Field
	OriginalAmount  Field
	FromCurrency    Field
	ToCurrency      Field
	ExchangeRate    Field
	ConversionDate  Field
	RateInfo        Field
	Raw             json.RawMessage
}

type conversionWire struct {
	Success         json.RawMessage `json:"success"`
	InfoCS          Field           `json:"conversionInfoCZE"`
	InfoEN          Field           `json:"conversionInfoENG"`
	ConvertedAmount Field           `json:"convertedAmount"`
	OriginalAmount  Field           `json:"originalAmount"`
	FromCurrency    Field           `json:"fromCurrency"`
	ToCurrency      Field           `json:"toCurrency"`
	ExchangeRate    Field           `json:"exchangeRate"`
	ConversionDate  Field           `json:"conversionDate"`
	Details         json.RawMessage `json:"details"`
}

// DecodeConversionResult accepts either a result object or a list whose
// first element is the result object.
func DecodeConversionResult(data []byte) (*ConversionResult, error) {
	obj, err := firstObject(data)
	if err != nil {
		return nil, err
	}
	var w conversionWire
	if err := json.Unmarshal(obj, &w); err != nil {
		return nil, fmt.Errorf("decode conversion result: %w", err)
	}
	res := &ConversionResult{
		InfoCS:          w.InfoCS,
		InfoEN:          w.InfoEN,
		ConvertedAmount: w.ConvertedAmount,
		OriginalAmount:  w.OriginalAmount,
		FromCurrency:    w.FromCurrency,
		ToCurrency:      w.ToCurrency,
		ExchangeRate:    w.ExchangeRate,
		ConversionDate:  w.ConversionDate,
		Raw:             obj,
	}
	switch s := bytes.TrimSpace(w.Success); {
	case len(s) == 0:
		res.Success = SuccessAbsent
	case string(s) == "true":
		res.Success = SuccessTrue
	default:
		res.Success = SuccessFalse
	}
	if d := bytes.TrimSpace(w.Details); len(d) > 0 && d[0] == '{' {
		var details struct {
			RateInfo Field `json:"rateInfo"`
		}
		if err := json.Unmarshal(d, &details); err == nil {
			res.RateInfo = details.RateInfo
		}
	}
	return res, nil
}

func firstObject(data []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}
	switch trimmed[0] {
	case '{':
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("decode json: %w", ErrUnexpectedShape)
		}
		return trimmed, nil
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if len(list) == 0 {
			return nil, ErrUnexpectedShape
		}
		first := bytes.TrimSpace(list[0])
		if len(first) == 0 || first[0] != '{' {
			return nil, ErrUnexpectedShape
		}
		return first, nil
	default:
		return nil, ErrUnexpectedShape
	}
}
