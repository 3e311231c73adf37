package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// marketProvider fetches recent hourly candles for one symbol from an
// upstream market data API
type marketProvider interface {
	Name() string
	RequiresKey() bool
	FetchCandles(client *fasthttp.Client, timeout time.Duration, apiKey, symbol string) ([]domain.MarketDataPoint, error)
}

func fetchJSON(client *fasthttp.Client, timeout time.Duration, url string, headers map[string]string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// baseCurrency strips the USDT/USD quote suffix from a crypto pair
func baseCurrency(symbol string) string {
	s := strings.TrimSuffix(symbol, "USDT")
	return strings.TrimSuffix(s, "USD")
}

// binanceProvider fetches crypto candles from the public Binance API
type binanceProvider struct{}

func (binanceProvider) Name() string      { return "binance" }
func (binanceProvider) RequiresKey() bool { return false }

func (p binanceProvider) FetchCandles(client *fasthttp.Client, timeout time.Duration, _, symbol string) ([]domain.MarketDataPoint, error) {
	url := fmt.Sprintf(
		"https://api.binance.com/api/v3/klines?symbol=%s&interval=1h&limit=24", symbol)

	// Klines arrive as arrays of mixed numbers and numeric strings
	var klines [][]interface{}
	if err := fetchJSON(client, timeout, url, nil, &klines); err != nil {
		return nil, err
	}

	points := make([]domain.MarketDataPoint, 0, len(klines))
	for _, k := range klines {
		if len(k) < 6 {
			continue
		}
		openTime, ok := k[0].(float64)
		if !ok {
			continue
		}
		open, err1 := parseNumericString(k[1])
		high, err2 := parseNumericString(k[2])
		low, err3 := parseNumericString(k[3])
		close, err4 := parseNumericString(k[4])
		volume, err5 := parseNumericString(k[5])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}

		points = append(points, domain.MarketDataPoint{
			Symbol:      symbol,
			AssetType:   domain.AssetTypeCrypto,
			Timestamp:   time.UnixMilli(int64(openTime)).UTC(),
			Granularity: domain.Granularity1h,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Volume:      volume,
			Provider:    p.Name(),
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", symbol)
	}

	return points, nil
}

func parseNumericString(v interface{}) (float64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("expected numeric string, got %T", v)
	}
	return strconv.ParseFloat(s, 64)
}

// coinGeckoProvider fetches crypto candles from the public CoinGecko API
type coinGeckoProvider struct{}

// coinGeckoIDs maps trading pairs to CoinGecko coin identifiers
var coinGeckoIDs = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"SOLUSDT": "solana",
	"ADAUSDT": "cardano",
	"DOTUSDT": "polkadot",
}

func (coinGeckoProvider) Name() string      { return "coingecko" }
func (coinGeckoProvider) RequiresKey() bool { return false }

func (p coinGeckoProvider) FetchCandles(client *fasthttp.Client, timeout time.Duration, _, symbol string) ([]domain.MarketDataPoint, error) {
	coinID, ok := coinGeckoIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("no coingecko mapping for %s", symbol)
	}

	url := fmt.Sprintf(
		"https://api.coingecko.com/api/v3/coins/%s/ohlc?vs_currency=usd&days=1", coinID)

	var ohlc [][]float64
	if err := fetchJSON(client, timeout, url, nil, &ohlc); err != nil {
		return nil, err
	}

	points := make([]domain.MarketDataPoint, 0, len(ohlc))
	for _, row := range ohlc {
		if len(row) < 5 {
			continue
		}
		points = append(points, domain.MarketDataPoint{
			Symbol:      symbol,
			AssetType:   domain.AssetTypeCrypto,
			Timestamp:   time.UnixMilli(int64(row[0])).UTC(),
			Granularity: domain.Granularity1h,
			Open:        row[1],
			High:        row[2],
			Low:         row[3],
			Close:       row[4],
			Provider:    p.Name(),
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", symbol)
	}

	return points, nil
}

// coinMarketCapProvider fetches the latest crypto quote from
// CoinMarketCap. Only a single current point is available per call.
type coinMarketCapProvider struct{}

func (coinMarketCapProvider) Name() string      { return "coinmarketcap" }
func (coinMarketCapProvider) RequiresKey() bool { return true }

func (p coinMarketCapProvider) FetchCandles(client *fasthttp.Client, timeout time.Duration, apiKey, symbol string) ([]domain.MarketDataPoint, error) {
	base := baseCurrency(symbol)
	url := fmt.Sprintf(
		"https://pro-api.coinmarketcap.com/v2/cryptocurrency/quotes/latest?symbol=%s", base)

	var payload struct {
		Data map[string][]struct {
			Quote map[string]struct {
				Price       float64   `json:"price"`
				Volume24h   float64   `json:"volume_24h"`
				LastUpdated time.Time `json:"last_updated"`
			} `json:"quote"`
		} `json:"data"`
	}

	headers := map[string]string{"X-CMC_PRO_API_KEY": apiKey}
	if err := fetchJSON(client, timeout, url, headers, &payload); err != nil {
		return nil, err
	}

	entries, ok := payload.Data[base]
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}
	quote, ok := entries[0].Quote["USD"]
	if !ok {
		return nil, fmt.Errorf("no USD quote for %s", symbol)
	}

	ts := quote.LastUpdated.UTC().Truncate(time.Hour)
	return []domain.MarketDataPoint{{
		Symbol:      symbol,
		AssetType:   domain.AssetTypeCrypto,
		Timestamp:   ts,
		Granularity: domain.Granularity1h,
		Open:        quote.Price,
		High:        quote.Price,
		Low:         quote.Price,
		Close:       quote.Price,
		Volume:      quote.Volume24h,
		Provider:    p.Name(),
	}}, nil
}

// polygonProvider fetches hourly aggregates from Polygon for both
// stocks and crypto
type polygonProvider struct {
	assetType domain.AssetType
}

func (polygonProvider) Name() string      { return "polygon" }
func (polygonProvider) RequiresKey() bool { return true }

func (p polygonProvider) FetchCandles(client *fasthttp.Client, timeout time.Duration, apiKey, symbol string) ([]domain.MarketDataPoint, error) {
	ticker := symbol
	if p.assetType == domain.AssetTypeCrypto {
		ticker = "X:" + baseCurrency(symbol) + "USD"
	}

	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	url := fmt.Sprintf(
		"https://api.polygon.io/v2/aggs/ticker/%s/range/1/hour/%d/%d?adjusted=true&sort=asc&apiKey=%s",
		ticker, from.UnixMilli(), to.UnixMilli(), apiKey)

	var payload struct {
		Results []struct {
			T int64   `json:"t"`
			O float64 `json:"o"`
			H float64 `json:"h"`
			L float64 `json:"l"`
			C float64 `json:"c"`
			V float64 `json:"v"`
		} `json:"results"`
	}
	if err := fetchJSON(client, timeout, url, nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", symbol)
	}

	points := make([]domain.MarketDataPoint, 0, len(payload.Results))
	for _, r := range payload.Results {
		points = append(points, domain.MarketDataPoint{
			Symbol:      symbol,
			AssetType:   p.assetType,
			Timestamp:   time.UnixMilli(r.T).UTC(),
			Granularity: domain.Granularity1h,
			Open:        r.O,
			High:        r.H,
			Low:         r.L,
			Close:       r.C,
			Volume:      r.V,
			Provider:    p.Name(),
		})
	}

	return points, nil
}

// alphaVantageProvider fetches hourly stock candles from Alpha Vantage
type alphaVantageProvider struct{}

func (alphaVantageProvider) Name() string      { return "alpha_vantage" }
func (alphaVantageProvider) RequiresKey() bool { return true }

func (p alphaVantageProvider) FetchCandles(client *fasthttp.Client, timeout time.Duration, apiKey, symbol string) ([]domain.MarketDataPoint, error) {
	url := fmt.Sprintf(
		"https://www.alphavantage.co/query?function=TIME_SERIES_INTRADAY&symbol=%s&interval=60min&outputsize=compact&apikey=%s",
		symbol, apiKey)

	var payload struct {
		Series map[string]struct {
			Open   string `json:"1. open"`
			High   string `json:"2. high"`
			Low    string `json:"3. low"`
			Close  string `json:"4. close"`
			Volume string `json:"5. volume"`
		} `json:"Time Series (60min)"`
	}
	if err := fetchJSON(client, timeout, url, nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", symbol)
	}

	points := make([]domain.MarketDataPoint, 0, len(payload.Series))
	for stamp, bar := range payload.Series {
		ts, err := time.Parse("2006-01-02 15:04:05", stamp)
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(bar.Open, 64)
		high, err2 := strconv.ParseFloat(bar.High, 64)
		low, err3 := strconv.ParseFloat(bar.Low, 64)
		close, err4 := strconv.ParseFloat(bar.Close, 64)
		volume, err5 := strconv.ParseFloat(bar.Volume, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}

		points = append(points, domain.MarketDataPoint{
			Symbol:      symbol,
			AssetType:   domain.AssetTypeStock,
			Timestamp:   ts.UTC(),
			Granularity: domain.Granularity1h,
			Open:        open,
			High:        high,
			Low:         low,
			Close:       close,
			Volume:      volume,
			Provider:    p.Name(),
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", symbol)
	}

	return points, nil
}

// eodhdProvider fetches hourly stock candles from EODHD
type eodhdProvider struct{}

func (eodhdProvider) Name() string      { return "eodhd" }
func (eodhdProvider) RequiresKey() bool { return true }

func (p eodhdProvider) FetchCandles(client *fasthttp.Client, timeout time.Duration, apiKey, symbol string) ([]domain.MarketDataPoint, error) {
	from := time.Now().Add(-24 * time.Hour).Unix()
	url := fmt.Sprintf(
		"https://eodhd.com/api/intraday/%s.US?interval=1h&from=%d&api_token=%s&fmt=json",
		symbol, from, apiKey)

	var bars []struct {
		Timestamp int64   `json:"timestamp"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Close     float64 `json:"close"`
		Volume    float64 `json:"volume"`
	}
	if err := fetchJSON(client, timeout, url, nil, &bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", symbol)
	}

	points := make([]domain.MarketDataPoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, domain.MarketDataPoint{
			Symbol:      symbol,
			AssetType:   domain.AssetTypeStock,
			Timestamp:   time.Unix(b.Timestamp, 0).UTC(),
			Granularity: domain.Granularity1h,
			Open:        b.Open,
			High:        b.High,
			Low:         b.Low,
			Close:       b.Close,
			Volume:      b.Volume,
			Provider:    p.Name(),
		})
	}

	return points, nil
}
