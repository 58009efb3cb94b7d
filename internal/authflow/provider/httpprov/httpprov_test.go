package httpprov

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusgate/pkg/platform/sentinel"
)

func TestVerifyCodeRoundTrip(t *testing.T) {
	userID := uuid.NewString()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "student@dbcblr.edu.in", body["email"])
		assert.Equal(t, "123456", body["token"])
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
	}))
	defer srv.Close()

	p := New(srv.URL)
	pid, err := p.VerifyCode(context.Background(), "student@dbcblr.edu.in", "123456")
	require.NoError(t, err)
	assert.Equal(t, userID, pid.String())
}

func TestRejectionStatusMapsToInvalidState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := New(srv.URL)
	_, err := p.VerifyCode(context.Background(), "student@dbcblr.edu.in", "000000")
	require.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	}))
	defer srv.Close()

	p := New(srv.URL)
	err := p.SendVerificationCode(context.Background(), "student@dbcblr.edu.in", true)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestBreakerShortCircuitsRepeatedOutage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(srv.URL)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		err := p.SendVerificationCode(ctx, "student@dbcblr.edu.in", false)
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
	}

	// Five failures open the circuit; the remaining calls never reach the
	// server until the probe interval elapses.
	assert.EqualValues(t, 5, calls.Load())
}

func TestUserErrorsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := New(srv.URL)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := p.VerifyCode(ctx, "student@dbcblr.edu.in", "999999")
		require.ErrorIs(t, err, sentinel.ErrInvalidState)
	}
	assert.EqualValues(t, 10, calls.Load())
}
