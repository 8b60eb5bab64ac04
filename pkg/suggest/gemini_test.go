package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/raterudder/chargeadvisor/pkg/types"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	g := &Gemini{
		apiKey:   "test-key",
		model:    "gemini-test",
		endpoint: ts.URL + "/",
		timeout:  5 * time.Second,
	}
	require.NoError(t, g.Validate())
	require.NoError(t, g.Init(context.Background()))
	return g
}

func writeCandidate(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
	require.NoError(t, err)
}

// tripAwareHandler behaves like a well-behaved model: it only estimates the
// trip when the prompt names both locations.
func tripAwareHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body generativelanguage.GenerateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Len(t, body.Contents[0].Parts, 1)
		prompt := body.Contents[0].Parts[0].Text

		res := types.ScheduleResult{
			SuggestedSchedule:    "Start charging at 11:00 PM for 3 hours.",
			EstimatedCostSavings: "$1.50/month",
			BatteryLifeBenefits:  "Reduces heat stress.",
		}
		if !strings.Contains(prompt, "Trip Start Location: \n") && !strings.Contains(prompt, "Trip End Location: \n") {
			res.EstimatedChargeForTrip = "Approximately 35%"
		}
		b, err := json.Marshal(res)
		require.NoError(t, err)
		writeCandidate(t, w, string(b))
	}
}

func TestGeminiGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Request Shape", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "ChargeAdvisor/"))

			var body generativelanguage.GenerateContentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.NotNil(t, body.GenerationConfig)
			assert.Equal(t, "application/json", body.GenerationConfig.ResponseMimeType)
			require.NotNil(t, body.GenerationConfig.ResponseSchema)
			assert.Equal(t, "OBJECT", body.GenerationConfig.ResponseSchema.Type)
			assert.Len(t, body.GenerationConfig.ResponseSchema.Properties, 4)
			assert.Equal(t, "STRING", body.GenerationConfig.ResponseSchema.Properties["suggestedSchedule"].Type)
			assert.Contains(t, body.Contents[0].Parts[0].Text, "- Local Energy Cost: 12 cents per kWh")

			writeCandidate(t, w, `{"suggestedSchedule":"a","estimatedCostSavings":"b","batteryLifeBenefits":"c","estimatedChargeForTrip":""}`)
		})

		res, err := g.Generate(ctx, scenarioOneRequest())
		require.NoError(t, err)
		assert.Equal(t, types.ScheduleResult{SuggestedSchedule: "a", EstimatedCostSavings: "b", BatteryLifeBenefits: "c"}, res)
	})

	t.Run("Trip Estimate Only With Both Locations", func(t *testing.T) {
		g := newTestGemini(t, tripAwareHandler(t))

		res, err := g.Generate(ctx, scenarioOneRequest())
		require.NoError(t, err)
		assert.Empty(t, res.EstimatedChargeForTrip)

		req := scenarioOneRequest()
		req.StartLocation = "San Francisco, CA"
		res, err = g.Generate(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, res.EstimatedChargeForTrip)

		req.EndLocation = "Los Angeles, CA"
		res, err = g.Generate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Approximately 35%", res.EstimatedChargeForTrip)
	})

	t.Run("Backend Error", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
		})
		_, err := g.Generate(ctx, scenarioOneRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate content")
	})

	t.Run("Blocked Prompt", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
		})
		_, err := g.Generate(ctx, scenarioOneRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SAFETY")
	})

	t.Run("No Candidates", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		})
		_, err := g.Generate(ctx, scenarioOneRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no candidates")
	})

	t.Run("Malformed Answer", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			writeCandidate(t, w, `{"suggestedSchedule":"a"}`)
		})
		_, err := g.Generate(ctx, scenarioOneRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing estimatedCostSavings")
	})

	t.Run("Context Deadline", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := g.Generate(tctx, scenarioOneRequest())
		require.Error(t, err)
	})

	t.Run("Through Service", func(t *testing.T) {
		g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		res, err := NewService(g, nil).Suggest(ctx, scenarioOneRequest())
		var serr *ServiceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, types.ScheduleResult{}, res)
	})

	t.Run("Not Initialized", func(t *testing.T) {
		_, err := (&Gemini{apiKey: "k", model: "m"}).Generate(ctx, scenarioOneRequest())
		assert.Error(t, err)
	})
}

func TestGeminiValidate(t *testing.T) {
	assert.Error(t, (&Gemini{model: "m"}).Validate())
	assert.Error(t, (&Gemini{apiKey: "k"}).Validate())
	assert.Error(t, (&Gemini{apiKey: "k", model: "m", endpoint: "://bad"}).Validate())
	assert.NoError(t, (&Gemini{apiKey: "k", model: "m"}).Validate())
}

func TestGeminiModelName(t *testing.T) {
	assert.Equal(t, "models/gemini-2.0-flash", (&Gemini{model: "gemini-2.0-flash"}).modelName())
	assert.Equal(t, "models/custom", (&Gemini{model: "models/custom"}).modelName())
}
