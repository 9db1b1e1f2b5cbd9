// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultDeviceID identifies the device to the hub.
const DefaultDeviceID = "myFirstDevice"

// HTTP publishes temperature samples to a cloud hub endpoint.
type HTTP struct {
	URL      string
	DeviceID string
	Client   *http.Client
	// Header is added to each request, e.g. to carry a shared access
	// signature.
	Header http.Header
}

// NewHTTP creates a publisher posting to url.
func NewHTTP(url string) *HTTP {
	return &HTTP{
		URL:      url,
		DeviceID: DefaultDeviceID,
		Client:   http.DefaultClient,
	}
}

// Publish posts the sample as a HubMessage.
//
// Only numeric samples are supported.
func (h *HTTP) Publish(ctx context.Context, s Sample) error {
	v, ok := s.Float()
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrUnsupportedValue, s.Name, s.Value)
	}
	b, err := json.Marshal(HubMessage{DeviceID: h.DeviceID, Temperature: v})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range h.Header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("hub returned %s", resp.Status)
	}
	return nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.Client.CloseIdleConnections()
	return nil
}

var _ Publisher = (*HTTP)(nil)
