package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"
)

type fakeTipService struct {
	recordResult *services.RecordTipResult
	recordErr    error
}

func (f *fakeTipService) RecordTip(req services.RecordTipRequest, ip string, userAgent *string) (*services.RecordTipResult, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return f.recordResult, nil
}

func (f *fakeTipService) CanTip(token string, staffID int64, ip string) (*services.CanTipResult, error) {
	return &services.CanTipResult{CanTip: true, RemainingTips: 3, Reason: services.TipReasonOK}, nil
}

func (f *fakeTipService) ListTipsByStaff(staffID int64) ([]models.TipTransaction, error) {
	return nil, nil
}

func postTip(t *testing.T, svc services.TipService) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body, err := json.Marshal(services.RecordTipRequest{
		GuestPageToken:  "11111111-2222-3333-4444-555555555555",
		StaffID:         7,
		TransactionHash: "0x" + strings.Repeat("ab", 32),
		Network:         "ethereum",
	})
	require.NoError(t, err)

	engine := gin.New()
	engine.POST("/tips", NewTipHandler(svc).RecordTip)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tips", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestRecordTip_RateLimitedResponseCarriesRemaining(t *testing.T) {
	w := postTip(t, &fakeTipService{recordErr: services.ErrRateLimitExceeded})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		RemainingTips *int `json:"remaining_tips"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, utils.ErrCodeRateLimitExceeded, body.Error.Code)
	require.NotNil(t, body.RemainingTips, "rate-limit rejection must report the remaining allowance")
	assert.Equal(t, 0, *body.RemainingTips)
}

func TestRecordTip_Success(t *testing.T) {
	w := postTip(t, &fakeTipService{recordResult: &services.RecordTipResult{TransactionID: 12, RemainingTips: 2}})
	assert.Equal(t, http.StatusCreated, w.Code)

	var res services.RecordTipResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int64(12), res.TransactionID)
	assert.Equal(t, 2, res.RemainingTips)
}
