// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/telemetry"
)

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.cbor")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)

	r1, err := telemetry.CreateRecorder(path)
	require.Nil(t, err)
	err = r1.Publish(context.Background(), telemetry.Sample{Name: "temperature", Value: 21.5, Time: ts})
	require.Nil(t, err)
	err = r1.Publish(context.Background(), telemetry.Sample{Name: "flame", Value: true, Time: ts})
	require.Nil(t, err)
	require.Nil(t, r1.Close())
	assert.Nil(t, r1.Close())
	err = r1.Publish(context.Background(), telemetry.Sample{Name: "late"})
	assert.Equal(t, telemetry.ErrClosed, err)

	// appends
	r2, err := telemetry.CreateRecorder(path)
	require.Nil(t, err)
	assert.NotEqual(t, r1.Session(), r2.Session())
	err = r2.Publish(context.Background(), telemetry.Sample{Name: "gpsv1", Value: "1.000000, 2.000000", Time: ts})
	require.Nil(t, err)
	require.Nil(t, r2.Close())

	f, err := os.Open(path)
	require.Nil(t, err)
	defer f.Close()
	var rr []telemetry.Record
	err = telemetry.ReadRecords(f, func(r telemetry.Record) bool {
		rr = append(rr, r)
		return true
	})
	require.Nil(t, err)
	require.Len(t, rr, 3)
	assert.Equal(t, r1.Session(), rr[0].Session)
	assert.Equal(t, "temperature", rr[0].Sample.Name)
	assert.Equal(t, 21.5, rr[0].Sample.Value)
	assert.True(t, ts.Equal(rr[0].Sample.Time))
	assert.Equal(t, true, rr[1].Sample.Value)
	assert.Equal(t, r2.Session(), rr[2].Session)
	assert.Equal(t, "1.000000, 2.000000", rr[2].Sample.Value)
}

func TestReadRecordsStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.cbor")
	r, err := telemetry.CreateRecorder(path)
	require.Nil(t, err)
	for i := 0; i < 5; i++ {
		err = r.Publish(context.Background(), telemetry.NewSample("count", i))
		require.Nil(t, err)
	}
	require.Nil(t, r.Close())

	f, err := os.Open(path)
	require.Nil(t, err)
	defer f.Close()
	n := 0
	err = telemetry.ReadRecords(f, func(r telemetry.Record) bool {
		n++
		return n < 2
	})
	require.Nil(t, err)
	assert.Equal(t, 2, n)
}
