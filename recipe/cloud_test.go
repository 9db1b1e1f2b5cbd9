// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-iotkit/device/buzzer"
	"github.com/warthog618/go-iotkit/recipe"
	"github.com/warthog618/go-iotkit/sensor"
	"github.com/warthog618/go-iotkit/sim"
	"github.com/warthog618/go-iotkit/telemetry"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

func TestFlame(t *testing.T) {
	p := sim.NewPin("flame")
	p.Set(1)
	pwm := sim.NewPWM("buzzer")
	c := &capture{}
	var out syncBuffer
	f := recipe.Flame{
		Sensor:    sensor.Flame{In: p},
		Buzzer:    buzzer.New(pwm),
		Publisher: c,
		Out:       &out,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Check(ctx)
	require.Nil(t, err)
	_, _, n := pwm.Setting()
	assert.Equal(t, 0, n)

	p.Set(0)
	err = f.Check(ctx)
	require.Nil(t, err)
	d, freq, n := pwm.Setting()
	assert.Equal(t, 2, n)
	assert.Equal(t, gpio.Duty(0), d)
	assert.Equal(t, physic.Frequency(0), freq)

	assert.Equal(t, "No flame detected.\nFlame or similar light source detected!\n", out.String())
	ss := c.samples()
	require.Len(t, ss, 2)
	assert.Equal(t, "fire", ss[0].Name)
	assert.Equal(t, false, ss[0].Value)
	assert.Equal(t, true, ss[1].Value)
}

func TestCelsiusHumidity(t *testing.T) {
	assert.InDelta(t, 21.5, recipe.Celsius(physic.ZeroCelsius+21*physic.Celsius+500*physic.MilliKelvin), 1e-9)
	assert.InDelta(t, -10, recipe.Celsius(physic.ZeroCelsius-10*physic.Celsius), 1e-9)
	assert.InDelta(t, 45, recipe.Humidity(45*physic.PercentRH), 1e-9)
}

type fakeEnv struct {
	env physic.Env
	err error
}

func (f *fakeEnv) Sense(e *physic.Env) error {
	*e = f.env
	return f.err
}

func TestEnv(t *testing.T) {
	s := &fakeEnv{env: physic.Env{
		Temperature: physic.ZeroCelsius + 21*physic.Celsius,
		Humidity:    55 * physic.PercentRH,
	}}
	c := &capture{}
	d := &fakeDisplay{}
	e := recipe.Env{Sensor: s, Publisher: c, Display: d}
	err := e.Sense(context.Background())
	require.Nil(t, err)
	assert.Equal(t, "Temp: 21.0 C", d.row(0))
	assert.Equal(t, "RH:   55.0 %", d.row(1))
	ss := c.samples()
	require.Len(t, ss, 2)
	assert.Equal(t, "temperature", ss[0].Name)
	assert.InDelta(t, 21, ss[0].Value, 1e-9)
	assert.Equal(t, "humidity", ss[1].Name)
	assert.InDelta(t, 55, ss[1].Value, 1e-9)

	s.err = errors.New("bus fault")
	err = e.Sense(context.Background())
	assert.Equal(t, s.err, err)
	assert.Len(t, c.samples(), 2)
}

func TestCloud(t *testing.T) {
	a := sim.NewAnalog("temp", 10, sim.WithInitial(512))
	c := &capture{}
	cl := recipe.Cloud{
		Temperature: sensor.Temperature{In: a},
		Publisher:   c,
		Count:       2,
		Period:      time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := cl.Run(ctx)
	require.Nil(t, err)
	assert.Nil(t, ctx.Err())
	assert.Equal(t, 2, cl.Sent())
	ss := c.samples()
	require.Len(t, ss, 2)
	for _, s := range ss {
		assert.Equal(t, "temperature", s.Name)
		assert.InDelta(t, 25, s.Value, 0.5)
	}
}

func TestCloudHub(t *testing.T) {
	var mu sync.Mutex
	var msgs []telemetry.HubMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m telemetry.HubMessage
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		msgs = append(msgs, m)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := sim.NewAnalog("temp", 10, sim.WithInitial(600))
	cl := recipe.Cloud{
		Temperature: sensor.Temperature{In: a},
		Publisher:   telemetry.NewHTTP(srv.URL),
		Count:       3,
		Period:      time.Millisecond,
	}
	err := cl.Run(context.Background())
	require.Nil(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, telemetry.DefaultDeviceID, m.DeviceID)
		assert.InDelta(t, 33.03, m.Temperature, 0.01)
	}
}

func TestCloudPublishError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := sim.NewAnalog("temp", 10, sim.WithInitial(512))
	cl := recipe.Cloud{
		Temperature: sensor.Temperature{In: a},
		Publisher:   telemetry.NewHTTP(srv.URL),
		Count:       3,
	}
	err := cl.Run(context.Background())
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "can't send message 1")
	assert.Equal(t, 0, cl.Sent())
}

func TestCloudNoAgent(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := pc.LocalAddr().String()
	pc.Close()
	u, err := telemetry.NewUDP(addr)
	require.Nil(t, err)

	a := sim.NewAnalog("temp", 10, sim.WithInitial(512))
	c := &capture{}
	pub := telemetry.Multi{u, c}
	defer pub.Close()
	cl := recipe.Cloud{
		Temperature: sensor.Temperature{In: a},
		Publisher:   pub,
		Count:       4,
		Period:      10 * time.Millisecond,
	}
	err = cl.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, 4, cl.Sent())
	assert.Len(t, c.samples(), 4)
}
