package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vac-rating-engine/internal/domain"
	"github.com/vac-rating-engine/internal/engine"
	"github.com/vac-rating-engine/internal/rules"
)

// stubConfigManager serves a fixed configuration to the server under test
type stubConfigManager struct {
	config domain.Config
}

func (s *stubConfigManager) GetConfig() *domain.Config             { return &s.config }
func (s *stubConfigManager) GetServerConfig() *domain.ServerConfig { return &s.config.Server }
func (s *stubConfigManager) Validate() error                       { return nil }
func (s *stubConfigManager) Reload() error                         { return nil }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func testServer(t *testing.T, mutate func(*domain.Config)) *Server {
	t.Helper()

	cfg := domain.Config{
		Server: domain.ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  2 * time.Minute,
		},
		Cache:   domain.CacheConfig{Enabled: true, MaxEntries: 16},
		Logging: domain.LoggingConfig{Level: "info", Format: "json"},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	logger := testLogger()
	repo, err := rules.LoadDefault(logger)
	require.NoError(t, err)

	server, err := NewServer(&stubConfigManager{config: cfg}, repo, engine.New(repo, logger), logger)
	require.NoError(t, err)
	return server
}

func postAssessment(t *testing.T, server *Server, request *domain.AssessmentRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(request)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)
	return recorder
}

func validRequest() *domain.AssessmentRequest {
	return &domain.AssessmentRequest{
		Conditions: []domain.ConditionBinding{
			{
				Condition: domain.Condition{
					ID:          "C-1",
					Name:        "Lumbar strain",
					Ref:         domain.TableRef{Chapter: 17, Table: 1},
					Entitlement: domain.ENTITLED,
				},
				Rating: 17,
			},
		},
		Groups: []domain.GroupDirective{
			{AnchorConditionID: "C-1", QoLLevel: domain.QOL_LEVEL_TWO},
		},
	}
}

func TestHandleAssess_Success(t *testing.T) {
	server := testServer(t, nil)

	recorder := postAssessment(t, server, validRequest())
	require.Equal(t, http.StatusOK, recorder.Code)

	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "2019", result.RulesVersion)
	assert.Equal(t, 22, result.Final)
	assert.NotEmpty(t, result.Trace)
}

func TestHandleAssess_CachesByteIdenticalResponses(t *testing.T) {
	server := testServer(t, nil)

	first := postAssessment(t, server, validRequest())
	require.Equal(t, http.StatusOK, first.Code)
	second := postAssessment(t, server, validRequest())
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())

	stats := server.cache.stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestHandleAssess_ErrorStatuses(t *testing.T) {
	server := testServer(t, nil)

	tests := []struct {
		name     string
		mutate   func(req *domain.AssessmentRequest)
		expected int
	}{
		{
			name: "Unknown_Table",
			mutate: func(req *domain.AssessmentRequest) {
				req.Conditions[0].Condition.Ref.Table = 4
			},
			expected: http.StatusBadRequest,
		},
		{
			name: "Undefined_Rating_Cell",
			mutate: func(req *domain.AssessmentRequest) {
				req.Conditions[0].Rating = 18
			},
			expected: http.StatusBadRequest,
		},
		{
			name: "Missing_Directive",
			mutate: func(req *domain.AssessmentRequest) {
				req.Groups = nil
			},
			expected: http.StatusBadRequest,
		},
		{
			name: "Ambiguous_Overlap",
			mutate: func(req *domain.AssessmentRequest) {
				req.Conditions = append(req.Conditions, domain.ConditionBinding{
					Condition: domain.Condition{
						ID:          "C-2",
						Name:        "Thoracic strain",
						Ref:         domain.TableRef{Chapter: 17, Table: 1},
						Entitlement: domain.ENTITLED,
					},
					Rating: 13,
				})
				req.Groups[0].PCT = &domain.PCTDeclaration{ContributorID: "C-2", Fraction: domain.HALF}
			},
			expected: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(request)

			recorder := postAssessment(t, server, request)
			assert.Equal(t, tt.expected, recorder.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandleAssess_RejectsMalformedJSON(t *testing.T) {
	server := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewReader([]byte("{not json")))
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleListChapters(t *testing.T) {
	server := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chapters", nil)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		RulesVersion string `json:"rules_version"`
		Chapters     []struct {
			Chapter int    `json:"chapter"`
			Title   string `json:"title"`
		} `json:"chapters"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "2019", body.RulesVersion)
	require.Len(t, body.Chapters, 3)
	assert.Equal(t, 9, body.Chapters[0].Chapter)
	assert.Equal(t, 21, body.Chapters[2].Chapter)
}

func TestHandleGetTable(t *testing.T) {
	server := testServer(t, nil)

	t.Run("Known_Table", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chapters/17/tables/1", nil)
		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var body struct {
			ChapterTitle string           `json:"chapter_title"`
			Table        domain.RuleTable `json:"table"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "Musculoskeletal Impairment", body.ChapterTitle)
		assert.Equal(t, "Loss of Function - Spine", body.Table.Title)
		assert.NotEmpty(t, body.Table.Cells)
	})

	t.Run("Unknown_Table", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chapters/17/tables/99", nil)
		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("NonNumeric_Chapter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chapters/x/tables/1", nil)
		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	server := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Status       string `json:"status"`
		RulesVersion string `json:"rules_version"`
		Rules        struct {
			Chapters int `json:"chapters"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "2019", body.RulesVersion)
	assert.Equal(t, 3, body.Rules.Chapters)
}

func TestRateLimitMiddleware(t *testing.T) {
	server := testServer(t, func(cfg *domain.Config) {
		cfg.RateLimit = domain.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 2}
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes[2:], http.StatusTooManyRequests)
}

func TestSecurityHeaders(t *testing.T) {
	server := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
}

func TestRequestIDMiddleware(t *testing.T) {
	server := testServer(t, nil)

	t.Run("Generated_When_Absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)
		assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	})

	t.Run("Preserved_When_Present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-42")
		recorder := httptest.NewRecorder()
		server.router.ServeHTTP(recorder, req)
		assert.Equal(t, "req-42", recorder.Header().Get("X-Request-ID"))
	})
}
