// Package serialproc implements the Serial Processor: the component that
// drives one Transceiver and one Field Store, turning bounded reads into
// decoded frames applied to the store and Field Store writes into encoded
// frames on the wire.
package serialproc

import (
	"fmt"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/fieldstore"
	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/metrics"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
)

// OnNewMessage is invoked once per decoded frame, after its fields have been
// applied to the store.
type OnNewMessage func(frame.Decoded)

// Processor owns a Transceiver and a Field Store and bridges the two: Update
// performs one bounded read/decode/apply cycle, Send encodes and writes one
// frame out of the current store contents.
type Processor struct {
	xcvr    transceiver.Transceiver
	store   *fieldstore.Store
	dec     frame.Decoder
	metrics *metrics.Metrics

	onNewMessage OnNewMessage

	lastMsgRecvTime time.Time
	hasRecvTime     bool
}

// New constructs a Processor bound to xcvr and store. onNewMessage may be
// nil. m is optional and may be nil, in which case frame/decode-error
// counters are skipped.
func New(xcvr transceiver.Transceiver, store *fieldstore.Store, onNewMessage OnNewMessage, m *metrics.Metrics) *Processor {
	return &Processor{xcvr: xcvr, store: store, onNewMessage: onNewMessage, metrics: m}
}

// Update performs one bounded Recv against the transceiver's default timeout,
// decodes whatever frames result, applies their fields to the store, and
// invokes onNewMessage for each. now is recorded as the write time and, on
// at least one decoded frame, as the last-message-received time.
func (p *Processor) Update(now time.Time) error {
	data, outcome, err := p.xcvr.Recv(transceiver.DefaultRecvTimeout)
	if err != nil {
		return fmt.Errorf("serialproc: recv: %w", err)
	}
	if outcome != transceiver.Data {
		return nil
	}

	resyncBefore := p.dec.ResyncCount
	decoded := p.dec.Feed(data)
	if p.metrics != nil {
		if delta := p.dec.ResyncCount - resyncBefore; delta > 0 {
			p.metrics.DecodeErrorsTotal.Add(float64(delta))
		}
	}

	for _, d := range decoded {
		for field, value := range d.Fields {
			p.store.Set(field, value, now)
		}
		p.lastMsgRecvTime = now
		p.hasRecvTime = true
		if p.metrics != nil {
			p.metrics.FramesReceivedTotal.WithLabelValues(d.FrameID.String()).Inc()
		}
		if p.onNewMessage != nil {
			p.onNewMessage(d)
		}
	}
	return nil
}

// Send encodes frameID out of the current store contents and writes it to
// the transceiver.
func (p *Processor) Send(frameID frame.FrameID) error {
	buf, err := frame.Encode(frameID, p.store)
	if err != nil {
		return fmt.Errorf("serialproc: send %s: %w", frameID, err)
	}
	if err := p.xcvr.Send(buf); err != nil {
		return fmt.Errorf("serialproc: send %s: %w", frameID, err)
	}
	if p.metrics != nil {
		p.metrics.FramesSentTotal.WithLabelValues(frameID.String()).Inc()
	}
	return nil
}

// LastMessageRecvTime returns the time of the most recently decoded frame and
// whether any frame has ever been received.
func (p *Processor) LastMessageRecvTime() (time.Time, bool) {
	return p.lastMsgRecvTime, p.hasRecvTime
}

// SetField writes a raw field value directly to the store, stamped now.
func (p *Processor) SetField(field frame.FieldID, value []byte, now time.Time) {
	p.store.Set(field, value, now)
}

// GetField reads a raw field value directly from the store.
func (p *Processor) GetField(field frame.FieldID) ([]byte, bool) {
	return p.store.Get(field)
}

// SetFieldUint8 writes a single-byte field, stamped now.
func (p *Processor) SetFieldUint8(field frame.FieldID, v uint8, now time.Time) {
	fieldstore.SetUint8(p.store, field, v, now)
}

// GetFieldUint8 reads a single-byte field.
func (p *Processor) GetFieldUint8(field frame.FieldID) (uint8, bool) {
	return fieldstore.GetUint8(p.store, field)
}

// SetFieldString writes a fixed-width NUL-padded string field, stamped now.
func (p *Processor) SetFieldString(field frame.FieldID, v string, now time.Time) {
	fieldstore.SetString(p.store, field, v, now)
}

// GetFieldString reads a fixed-width NUL-padded string field.
func (p *Processor) GetFieldString(field frame.FieldID) (string, bool) {
	return fieldstore.GetString(p.store, field)
}

// Store returns the processor's Field Store, for typed accessor use by
// callers that need direct field access alongside Update/Send.
func (p *Processor) Store() *fieldstore.Store {
	return p.store
}

// Close releases the underlying transceiver.
func (p *Processor) Close() error {
	return p.xcvr.Close()
}
