package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/metrics"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// Geocode resolves a place name, optionally qualified with an ISO country
// code, into coordinate candidates. The provider orders candidates by
// relevance; an empty result is not an error.
func (c *Client) Geocode(ctx context.Context, name, country string) ([]models.GeoCandidate, error) {
	query := name
	if country != "" {
		query = fmt.Sprintf("%s,%s", name, country)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", c.geoLimit))
	params.Set("appid", c.apiKey)

	var candidates []models.GeoCandidate
	if err := c.getJSON(ctx, "geocode", fmt.Sprintf("%s/direct?%s", c.geoURL, params.Encode()), &candidates); err != nil {
		return nil, err
	}

	return candidates, nil
}

// currentWeatherPayload mirrors the OpenWeatherMap /weather response
type currentWeatherPayload struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   *int    `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility *int  `json:"visibility"`
	Dt         int64 `json:"dt"`
}

// CurrentWeather fetches the current observation for the given coordinates.
// Units is the OpenWeatherMap unit system name (metric, imperial, standard).
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64, units string) (*models.WeatherSnapshot, error) {
	endpoint := "current_weather"

	var payload currentWeatherPayload
	if err := c.getJSON(ctx, endpoint, c.dataURL("/weather", lat, lon, units), &payload); err != nil {
		return nil, err
	}

	if len(payload.Weather) == 0 {
		return nil, &ProviderError{Endpoint: endpoint, Err: fmt.Errorf("response has no weather conditions")}
	}

	return &models.WeatherSnapshot{
		Temperature:        payload.Main.Temp,
		FeelsLike:          payload.Main.FeelsLike,
		TempMin:            payload.Main.TempMin,
		TempMax:            payload.Main.TempMax,
		Pressure:           payload.Main.Pressure,
		Humidity:           payload.Main.Humidity,
		WeatherMain:        payload.Weather[0].Main,
		WeatherDescription: payload.Weather[0].Description,
		WeatherIcon:        payload.Weather[0].Icon,
		WindSpeed:          payload.Wind.Speed,
		WindDeg:            payload.Wind.Deg,
		Clouds:             payload.Clouds.All,
		Visibility:         payload.Visibility,
		APITimestamp:       payload.Dt,
	}, nil
}

// forecastPayload mirrors the OpenWeatherMap /forecast (5 day / 3 hour) response
type forecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Pressure  int     `json:"pressure"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   *int    `json:"deg"`
		} `json:"wind"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

// Forecast fetches the 5-day/3-hour forecast for the given coordinates,
// in provider order (ascending forecast time).
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units string) ([]models.ForecastItem, error) {
	endpoint := "forecast"

	var payload forecastPayload
	if err := c.getJSON(ctx, endpoint, c.dataURL("/forecast", lat, lon, units), &payload); err != nil {
		return nil, err
	}

	items := make([]models.ForecastItem, 0, len(payload.List))
	for _, slot := range payload.List {
		if len(slot.Weather) == 0 {
			return nil, &ProviderError{Endpoint: endpoint, Err: fmt.Errorf("forecast slot %d has no weather conditions", slot.Dt)}
		}
		items = append(items, models.ForecastItem{
			ForecastTimestamp:  slot.Dt,
			Temperature:        slot.Main.Temp,
			FeelsLike:          slot.Main.FeelsLike,
			TempMin:            slot.Main.TempMin,
			TempMax:            slot.Main.TempMax,
			Pressure:           slot.Main.Pressure,
			Humidity:           slot.Main.Humidity,
			WeatherMain:        slot.Weather[0].Main,
			WeatherDescription: slot.Weather[0].Description,
			WeatherIcon:        slot.Weather[0].Icon,
			WindSpeed:          slot.Wind.Speed,
			WindDeg:            slot.Wind.Deg,
			Clouds:             slot.Clouds.All,
			Pop:                slot.Pop,
		})
	}

	return items, nil
}

// dataURL builds a data-plane request URL for the given path and coordinates
func (c *Client) dataURL(path string, lat, lon float64, units string) string {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.4f", lat))
	params.Set("lon", fmt.Sprintf("%.4f", lon))
	params.Set("units", units)
	params.Set("appid", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// getJSON performs one GET through the circuit breaker and decodes the body.
// Every failure path comes back as a ProviderError.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out interface{}) error {
	start := time.Now()

	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return data, nil
	})

	metrics.RecordProviderRequest(endpoint, time.Since(start), err)

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			err = fmt.Errorf("circuit breaker open: %w", err)
		}
		return &ProviderError{Endpoint: endpoint, Err: err}
	}

	if err := json.Unmarshal(result.([]byte), out); err != nil {
		return &ProviderError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
