// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package recipe

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-iotkit"
	"github.com/warthog618/go-iotkit/nmea"
	"github.com/warthog618/go-iotkit/sensor"
	"github.com/warthog618/go-iotkit/telemetry"
	"golang.org/x/sync/errgroup"
)

// Telemetry names published by the fleet tracker.
const (
	GPSName       = "gpsv1"
	ReflectorName = "reflectorv1"
)

// BackupWarning is displayed while an object is close behind the vehicle.
const BackupWarning = "Within 4\" - STOP!!!"

// Fleet tracks a vehicle, publishing its position and tailgating events,
// and warns of obstacles while reversing.
type Fleet struct {
	// GPS is the NMEA stream from the receiver.  It is closed when the
	// tracker exits if it is an io.Closer.
	GPS       io.Reader
	Backup    sensor.IRDistance
	Tailgate  sensor.Reflective
	LED       iotkit.DigitalOut
	Display   Display
	Publisher telemetry.Publisher
	// Poll is the time between reads of the proximity sensors, default
	// 50ms.
	Poll time.Duration
	// Now returns the time displayed, default time.Now.
	Now    func() time.Time
	Logger *slog.Logger

	showTime atomic.Bool
	tailgate bool
}

// Position publishes the position from a GGA sentence.
//
// Returns false if the sentence does not contain a position.
func (f *Fleet) Position(ctx context.Context, s nmea.Sentence) bool {
	if !s.IsGGA() {
		return false
	}
	fix, err := s.GGA()
	if err != nil {
		loggerOrDefault(f.Logger).Debug("bad fix", "error", err)
		return false
	}
	f.publish(ctx, telemetry.NewSample(GPSName, fix.Position()))
	return true
}

func (f *Fleet) publish(ctx context.Context, s telemetry.Sample) {
	if err := f.Publisher.Publish(ctx, s); err != nil {
		loggerOrDefault(f.Logger).Error("can't publish", "name", s.Name, "error", err)
	}
}

func (f *Fleet) trackGPS(ctx context.Context) error {
	if c, ok := f.GPS.(io.Closer); ok {
		go func() {
			<-ctx.Done()
			c.Close()
		}()
	}
	err := nmea.Scan(ctx, f.GPS, func(s nmea.Sentence) bool {
		f.Position(ctx, s)
		return true
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		loggerOrDefault(f.Logger).Error("port read error", "error", err)
	}
	// the remaining checks continue without a position
	return nil
}

// CheckBackup checks for an object behind the vehicle, and displays a
// warning in place of the time while one is detected.
//
// Returns true if an object is detected.
func (f *Fleet) CheckBackup() (bool, error) {
	detected, err := f.Backup.ObjectDetected()
	if err != nil {
		return false, err
	}
	if !detected {
		f.showTime.Store(true)
		return false, nil
	}
	f.showTime.Store(false)
	return true, f.Display.Show(BackupWarning)
}

// CheckTailgate checks for a vehicle tailgating, lighting the LED while one
// is detected and publishing the start of each event.
//
// Returns true if a vehicle is detected.
func (f *Fleet) CheckTailgate(ctx context.Context) (bool, error) {
	detected, err := f.Tailgate.BlackDetected()
	if err != nil {
		return false, err
	}
	if !detected {
		f.tailgate = false
		return false, f.LED.SetValue(0)
	}
	if err := f.LED.SetValue(1); err != nil {
		return true, err
	}
	if !f.tailgate {
		f.publish(ctx, telemetry.NewSample(ReflectorName, "true"))
		f.tailgate = true
	}
	return true, nil
}

// ShowTime displays the current time, unless a warning is being displayed.
func (f *Fleet) ShowTime() error {
	if !f.showTime.Load() {
		return nil
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	t := now()
	return f.Display.Show(t.Format("Mon Jan _2 2006"), t.Format("15:04:05"))
}

// Run runs the tracker until ctx is done.
func (f *Fleet) Run(ctx context.Context) error {
	f.showTime.Store(true)
	poll := durationOr(f.Poll, 50*time.Millisecond)
	g, gctx := errgroup.WithContext(ctx)
	if f.GPS != nil {
		g.Go(func() error {
			return f.trackGPS(gctx)
		})
	}
	g.Go(func() error {
		for {
			detected, err := f.CheckBackup()
			if err != nil {
				return err
			}
			d := poll
			if detected {
				d = 500 * time.Millisecond
			}
			if sleep(gctx, d) != nil {
				return nil
			}
		}
	})
	g.Go(func() error {
		for {
			detected, err := f.CheckTailgate(gctx)
			if err != nil {
				return err
			}
			d := poll
			if detected {
				d = 500 * time.Millisecond
			}
			if sleep(gctx, d) != nil {
				return nil
			}
		}
	})
	g.Go(func() error {
		return every(gctx, 500*time.Millisecond, f.ShowTime)
	})
	err := g.Wait()
	f.LED.SetValue(0)
	f.Display.Clear()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
