package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"currency-converter/internal/datastructs"
	"currency-converter/internal/metrics"

	"github.com/google/uuid"
)

/*

Rate feed: https://data.kurzy.cz/json/meny/b[6].json
Czech National Bank rates, CZK is the base currency. The answer is either
an object or a list holding that object:
	{"denc": "18.10.2024", "kurzy": {"USD": {"jednotka": 1, "dev_stred": 23.5}, ...}}

Conversion webhook: POST with a single-element list
	[{"fromCurrency": "USD", "Units": 10, "toCurrency": "CZK"}]
and answers with a result object or a list holding it.

*/

// ErrStatus is returned for a non-2xx answer.
var ErrStatus = errors.New("unexpected response status")

const maxBody = 1 << 20

// FetchRates loads the current rate table from the feed.
func (s *Service) FetchRates(ctx context.Context) (*datastructs.RateTable, error) {
	start := time.Now()
	table, err := s.fetchRates(ctx)
	s.metrics.ObserveRateFetch(start, err)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("rate feed returned [%d] currency rates", len(table.Rates))
	return table, nil
}

func (s *Service) fetchRates(ctx context.Context) (*datastructs.RateTable, error) {
	s.log.Trace("request: ", s.RatesURL)
	body, err := s.requestAPI(ctx, http.MethodGet, s.RatesURL, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	table, err := datastructs.DecodeRateTable(body)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	return table, nil
}

// Convert posts req to the conversion webhook.
func (s *Service) Convert(ctx context.Context, req datastructs.ConversionRequest) (*datastructs.ConversionResult, error) {
	start := time.Now()
	res, err := s.convert(ctx, req)
	switch {
	case err != nil:
		s.metrics.ObserveConversion(start, metrics.ResultError)
		return nil, err
	case res.Success == datastructs.SuccessFalse:
		s.metrics.ObserveConversion(start, metrics.ResultFailed)
	default:
		s.metrics.ObserveConversion(start, metrics.ResultOK)
	}
	return res, nil
}

func (s *Service) convert(ctx context.Context, req datastructs.ConversionRequest) (*datastructs.ConversionResult, error) {
	payload, err := req.MarshalBody()
	if err != nil {
		return nil, fmt.Errorf("encode conversion request: %w", err)
	}
	requestID := uuid.NewString()
	s.log.WithField("request_id", requestID).Tracef("request: %s %s", s.WebhookURL, payload)

	body, err := s.requestAPI(ctx, http.MethodPost, s.WebhookURL, payload, map[string]string{
		"Content-Type": "application/json",
		"X-Request-ID": requestID,
	})
	if err != nil {
		return nil, fmt.Errorf("conversion request: %w", err)
	}
	s.log.WithField("request_id", requestID).Debugf("webhook response: %s", body)

	res, err := datastructs.DecodeConversionResult(body)
	if err != nil {
		return nil, fmt.Errorf("conversion request: %w", err)
	}
	return res, nil
}

// requestAPI performs a single request bounded by TimeoutResponse and
// returns the response body of a 2xx answer.
func (s *Service) requestAPI(ctx context.Context, method, url string, payload []byte, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.TimeoutResponse)*time.Second)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "currency-converter/"+version)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.New("request timed out")
		}
		return nil, err
	}
	defer res.Body.Close()

	s.log.Trace("response: ", res.Status)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, res.Status)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
