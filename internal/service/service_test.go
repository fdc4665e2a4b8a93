package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"currency-converter/internal/datastructs"
	"currency-converter/internal/metrics"
	"currency-converter/internal/widget"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gopkg.in/ini.v1"
)

const feedBody = `[{"denc": "18.10.2024", "kurzy": {
	"USD": {"jednotka": 1, "dev_stred": 23.5},
	"EUR": {"jednotka": 1, "dev_stred": 25.2}
}}]`

type fakeAPI struct {
	feed    *httptest.Server
	webhook *httptest.Server

	feedHits    atomic.Int32
	webhookHits atomic.Int32

	feedStatus   atomic.Int32
	webhookReply atomic.Value
	lastRequest  atomic.Value
	lastHeader   atomic.Value
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{}
	f.feedStatus.Store(http.StatusOK)
	f.webhookReply.Store(`{"success": true, "conversionInfoCZE": "Za 10 USD dostanete 235 CZK.", "conversionInfoENG": "For 10 USD you will get 235 CZK."}`)

	f.feed = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.feedHits.Add(1)
		if status := int(f.feedStatus.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = io.WriteString(w, feedBody)
	}))
	f.webhook = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.webhookHits.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.lastRequest.Store(string(body))
		f.lastHeader.Store(r.Header.Clone())
		_, _ = io.WriteString(w, f.webhookReply.Load().(string))
	}))
	t.Cleanup(func() {
		f.feed.Close()
		f.webhook.Close()
	})
	return f
}

func newTestService(t *testing.T, api *fakeAPI) (*Service, *prometheus.Registry) {
	t.Helper()
	cfg, err := ini.Load([]byte(fmt.Sprintf(`
[logger]
level = error
no_colors = true

[api]
rates_url = %s
webhook_url = %s

[service]
timeout_response = 2
timeout_request = 2
session_ttl = 1
`, api.feed.URL, api.webhook.URL)))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	s, err := newService(cfg, reg, reg)
	require.NoError(t, err)
	return s, reg
}

func TestNewService_Defaults(t *testing.T) {
	s, err := newService(ini.Empty(), prometheus.NewRegistry(), prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, defaultRatesURL, s.RatesURL)
	assert.Equal(t, defaultWebhookURL, s.WebhookURL)
	assert.Equal(t, defaultListen, s.Listen)
	assert.Equal(t, int64(5), s.TimeoutRequest)
	assert.Equal(t, int64(10), s.CheckInterval)
	assert.Equal(t, int64(60), s.SessionTTL)
}

func TestNewService_NonPositiveIntervals(t *testing.T) {
	cfg, err := ini.Load([]byte(`
[service]
check_interval = 0
session_ttl = -5
`))
	require.NoError(t, err)

	s, err := newService(cfg, prometheus.NewRegistry(), prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.CheckInterval)
	assert.Equal(t, int64(60), s.SessionTTL)
	assert.Equal(t, time.Hour, s.sessions.ttl)
}

func TestNew_MissingConfigFile(t *testing.T) {
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	defer func() { prometheus.DefaultRegisterer = prev }()

	s, err := New("does-not-exist.ini")
	require.NoError(t, err)
	assert.Equal(t, defaultRatesURL, s.RatesURL)
}

func TestFetchRates(t *testing.T) {
	api := newFakeAPI(t)
	s, _ := newTestService(t, api)

	table, err := s.FetchRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "18.10.2024", table.DateLabel)
	assert.Equal(t, datastructs.RateEntry{Unit: 1, MidPrice: 23.5}, table.Rates["USD"])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RateFetchTotal.WithLabelValues(metrics.ResultOK)))
}

func TestFetchRates_BadStatus(t *testing.T) {
	api := newFakeAPI(t)
	api.feedStatus.Store(http.StatusServiceUnavailable)
	s, _ := newTestService(t, api)

	_, err := s.FetchRates(context.Background())
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RateFetchTotal.WithLabelValues(metrics.ResultError)))
}

func TestConvert(t *testing.T) {
	api := newFakeAPI(t)
	s, _ := newTestService(t, api)

	res, err := s.Convert(context.Background(), datastructs.ConversionRequest{FromCurrency: "USD", Amount: 10, ToCurrency: "CZK"})
	require.NoError(t, err)
	assert.Equal(t, datastructs.SuccessTrue, res.Success)

	assert.JSONEq(t, `[{"fromCurrency":"USD","Units":10,"toCurrency":"CZK"}]`, api.lastRequest.Load().(string))
	header := api.lastHeader.Load().(http.Header)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.NotEmpty(t, header.Get("X-Request-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ConversionTotal.WithLabelValues(metrics.ResultOK)))
}

func TestConvert_FailedAndMalformed(t *testing.T) {
	api := newFakeAPI(t)
	s, _ := newTestService(t, api)
	req := datastructs.ConversionRequest{FromCurrency: "USD", Amount: 1, ToCurrency: "CZK"}

	api.webhookReply.Store(`[{"success": false}]`)
	res, err := s.Convert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, datastructs.SuccessFalse, res.Success)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ConversionTotal.WithLabelValues(metrics.ResultFailed)))

	api.webhookReply.Store(`<html>oops</html>`)
	_, err = s.Convert(context.Background(), req)
	assert.True(t, errors.Is(err, datastructs.ErrUnexpectedShape))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ConversionTotal.WithLabelValues(metrics.ResultError)))
}

func TestRequestAPI_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer slow.Close()

	api := newFakeAPI(t)
	s, _ := newTestService(t, api)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.requestAPI(ctx, http.MethodGet, slow.URL, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "request timed out", err.Error())
}

func TestSessions_Sweep(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := newSessions(time.Minute, m)
	start := time.Date(2024, 10, 18, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return start }

	r.add("a", &widget.Widget{})
	r.add("b", &widget.Widget{})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsActive))

	r.now = func() time.Time { return start.Add(50 * time.Second) }
	_, ok := r.get("b")
	require.True(t, ok)

	assert.Equal(t, 1, r.sweep(start.Add(90*time.Second)))
	assert.Equal(t, 1, r.len())
	_, ok = r.get("a")
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
}

type HTTPTestSuite struct {
	suite.Suite
	api *fakeAPI
	svc *Service
	sid string
}

func (s *HTTPTestSuite) SetupTest() {
	s.api = newFakeAPI(s.T())
	s.svc, _ = newTestService(s.T(), s.api)
	s.sid = ""
}

func (s *HTTPTestSuite) do(method, path string, form url.Values, asJSON bool) *http.Response {
	return s.doAs(&s.sid, method, path, form, asJSON)
}

// doAs sends the request with the session cookie held in sid and records
// the cookie the server hands back.
func (s *HTTPTestSuite) doAs(sid *string, method, path string, form url.Values, asJSON bool) *http.Response {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	if *sid != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: *sid})
	}
	resp, err := s.svc.app.Test(req, -1)
	s.Require().NoError(err)
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			*sid = c.Value
		}
	}
	return resp
}

func (s *HTTPTestSuite) state(resp *http.Response) widget.View {
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var v widget.View
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *HTTPTestSuite) page() string {
	resp := s.do(http.MethodGet, "/", nil, false)
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(body)
}

func (s *HTTPTestSuite) TestPageOpensWithDefaultPair() {
	html := s.page()
	s.NotEmpty(s.sid)
	s.Contains(html, "Převodník měn")
	s.Contains(html, `<option value="USD" selected>USD (Americký dolar)</option>`)
	s.Contains(html, `<option value="CZK" selected>CZK (Česká koruna)</option>`)
	s.Contains(html, "1 USD = 23.50 CZK (18.10.2024)")
	s.Equal(int32(1), s.api.feedHits.Load())
}

func (s *HTTPTestSuite) TestLocaleToggleKeepsForm() {
	s.page()
	form := url.Values{"amount": {"42"}, "from": {"EUR"}, "to": {"USD"}}

	resp := s.do(http.MethodPost, "/locale/en", form, false)
	s.Equal(http.StatusSeeOther, resp.StatusCode)

	html := s.page()
	s.Contains(html, `<html lang="en">`)
	s.Contains(html, "Currency Converter")
	s.Contains(html, `value="42"`)
	s.Contains(html, `<option value="EUR" selected>EUR (Euro)</option>`)
	s.Contains(html, `<option value="USD" selected>USD (US Dollar)</option>`)
	s.Contains(html, "1 EUR = 1.0723 USD (18.10.2024)")
	s.Equal(int32(1), s.api.feedHits.Load(), "locale toggle must not fetch")

	v := s.state(s.do(http.MethodPost, "/locale/cs", form, true))
	s.Equal("cs", string(v.Locale))
	s.Equal("42", v.Amount)
	s.Equal("EUR", v.From)
	s.Equal("USD", v.To)
}

func (s *HTTPTestSuite) TestUnknownLocale() {
	resp := s.do(http.MethodPost, "/locale/de", nil, false)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HTTPTestSuite) TestSwapFetchesOnce() {
	s.page()
	v := s.state(s.do(http.MethodPost, "/swap", url.Values{"amount": {""}, "from": {"USD"}, "to": {"CZK"}}, true))
	s.Equal("CZK", v.From)
	s.Equal("USD", v.To)
	s.Equal("1 CZK = 0.0426 USD (18.10.2024)", v.Rate)
	s.Equal(int32(2), s.api.feedHits.Load())
}

func (s *HTTPTestSuite) TestSelectWithFeedDown() {
	s.page()
	s.api.feedStatus.Store(http.StatusBadGateway)

	v := s.state(s.do(http.MethodPost, "/select", url.Values{"from": {"EUR"}, "to": {"CZK"}}, true))
	s.Equal("Informace o kurzu jsou dočasně nedostupné", v.Rate)
	s.Equal("EUR", v.From)
}

func (s *HTTPTestSuite) TestConvertValidationSkipsWebhook() {
	s.page()
	v := s.state(s.do(http.MethodPost, "/convert", url.Values{"amount": {"-5"}, "from": {"USD"}, "to": {"CZK"}}, true))
	s.Equal("Zadejte platnou částku", v.Error)
	s.Nil(v.Result)

	v = s.state(s.do(http.MethodPost, "/convert", url.Values{"amount": {"5"}, "from": {"USD"}, "to": {"USD"}}, true))
	s.Equal("Vyberte různé měny", v.Error)
	s.Equal(int32(0), s.api.webhookHits.Load())
}

func (s *HTTPTestSuite) TestConvert() {
	s.page()
	v := s.state(s.do(http.MethodPost, "/convert", url.Values{"amount": {"10"}, "from": {"USD"}, "to": {"CZK"}}, true))
	s.Empty(v.Error)
	s.Require().NotNil(v.Result)
	s.Equal("Za 10 USD dostanete 235 CZK.", v.Result.Text)
	s.False(v.Loading)
	s.Equal(int32(1), s.api.webhookHits.Load())

	s.api.webhookReply.Store(`{"success": false}`)
	v = s.state(s.do(http.MethodPost, "/convert", url.Values{"amount": {"10"}, "from": {"USD"}, "to": {"CZK"}}, true))
	s.Equal("Převod se nezdařil. Zkuste to znovu.", v.Error)
	s.Nil(v.Result)
}

func (s *HTTPTestSuite) TestConvertTemplatedEnglish() {
	s.page()
	s.do(http.MethodPost, "/locale/en", url.Values{"amount": {"10"}, "from": {"USD"}, "to": {"CZK"}}, false)
	s.api.webhookReply.Store(`{"convertedAmount":100,"originalAmount":"10","fromCurrency":"USD","toCurrency":"CZK"}`)

	s.do(http.MethodPost, "/convert", url.Values{"amount": {"10"}, "from": {"USD"}, "to": {"CZK"}}, false)
	s.Contains(s.page(), "For 10 USD you will get 100 CZK.")
}

func (s *HTTPTestSuite) TestHealthAndMetrics() {
	s.page()

	resp := s.do(http.MethodGet, "/healthz", nil, false)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/metrics", nil, false)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `converter_rate_fetch_total{result="ok"} 1`)
	s.Contains(string(body), "converter_sessions_active 1")
}

func (s *HTTPTestSuite) TestSessionsKeepTheirOwnForm() {
	var a, b string
	v := s.state(s.doAs(&a, http.MethodPost, "/select", url.Values{"amount": {"1234"}, "from": {"EUR"}, "to": {"USD"}}, true))
	s.Equal("1234", v.Amount)

	for i := 0; i < 5; i++ {
		var other string
		s.state(s.doAs(&other, http.MethodPost, "/select", url.Values{"amount": {"9999"}, "from": {"GBP"}, "to": {"JPY"}}, true))
	}
	s.state(s.doAs(&b, http.MethodPost, "/locale/en", url.Values{"amount": {"77"}, "from": {"CZK"}, "to": {"EUR"}}, true))
	s.state(s.doAs(&b, http.MethodPost, "/select", url.Values{"amount": {"5555"}, "from": {"AUD"}, "to": {"CAD"}}, true))
	s.NotEqual(a, b)

	v = s.state(s.doAs(&a, http.MethodGet, "/state", nil, true))
	s.Equal("cs", string(v.Locale))
	s.Equal("1234", v.Amount)
	s.Equal("EUR", v.From)
	s.Equal("USD", v.To)
	s.Equal("1 EUR = 1.0723 USD (18.10.2024)", v.Rate)

	v = s.state(s.doAs(&b, http.MethodGet, "/state", nil, true))
	s.Equal("en", string(v.Locale))
	s.Equal("5555", v.Amount)
	s.Equal("AUD", v.From)
	s.Equal("CAD", v.To)
}

func (s *HTTPTestSuite) TestNewSessionSwapFetchesOnce() {
	v := s.state(s.do(http.MethodPost, "/swap", url.Values{"amount": {""}, "from": {"USD"}, "to": {"CZK"}}, true))
	s.Equal("CZK", v.From)
	s.Equal("USD", v.To)
	s.Equal(int32(1), s.api.feedHits.Load())
}

func (s *HTTPTestSuite) TestNewSessionLocaleSkipsFeed() {
	v := s.state(s.do(http.MethodPost, "/locale/en", url.Values{"amount": {"3"}, "from": {"USD"}, "to": {"CZK"}}, true))
	s.Equal("en", string(v.Locale))
	s.Equal("3", v.Amount)
	s.Equal(int32(0), s.api.feedHits.Load())
}

func TestHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}
