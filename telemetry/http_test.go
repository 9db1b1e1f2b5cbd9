// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/telemetry"
)

func TestHTTP(t *testing.T) {
	var body, ctype, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		ctype = r.Header.Get("Content-Type")
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := telemetry.NewHTTP(srv.URL)
	h.Header = http.Header{"Authorization": []string{"SharedAccessSignature sr=x"}}
	err := h.Publish(context.Background(), telemetry.NewSample("temperature", 21.456))
	require.Nil(t, err)
	assert.Equal(t, `{"deviceId":"myFirstDevice","temperature":21.46}`, body)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "SharedAccessSignature sr=x", auth)

	err = h.Publish(context.Background(), telemetry.NewSample("flame", true))
	assert.True(t, errors.Is(err, telemetry.ErrUnsupportedValue))
	assert.Nil(t, h.Close())
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	h := telemetry.NewHTTP(srv.URL)
	err := h.Publish(context.Background(), telemetry.NewSample("temperature", 20))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "401")
}
