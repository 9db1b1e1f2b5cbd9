// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Record is a sample recorded by a Recorder.
type Record struct {
	Session string `cbor:"1,keyasint"`
	Sample  Sample `cbor:"2,keyasint"`
}

// Recorder publishes samples to a CBOR stream.
//
// Each Recorder has a unique session ID, so the records of several runs
// appended to the one file can be distinguished.
type Recorder struct {
	mu      sync.Mutex
	w       io.WriteCloser
	enc     *cbor.Encoder
	session string
	closed  bool
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w io.WriteCloser) *Recorder {
	return &Recorder{
		w:       w,
		enc:     encMode.NewEncoder(w),
		session: uuid.New().String(),
	}
}

// CreateRecorder creates a Recorder appending to the file at path.
func CreateRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewRecorder(f), nil
}

// Session returns the session ID of the recorder.
func (r *Recorder) Session() string {
	return r.session
}

// Publish records the sample.
func (r *Recorder) Publish(ctx context.Context, s Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.enc.Encode(Record{Session: r.session, Sample: s})
}

// Close closes the underlying writer.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.w.Close()
}

// ErrClosed indicates the publisher has been closed.
var ErrClosed = errors.New("closed")

// ReadRecords decodes records from r and passes each to fn, until r is
// exhausted or fn returns false.
func ReadRecords(r io.Reader, fn func(Record) bool) error {
	dec := decMode.NewDecoder(r)
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !fn(rec) {
			return nil
		}
	}
}

var _ Publisher = (*Recorder)(nil)
