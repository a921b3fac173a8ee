// Package codec implements the delimited text encoding used to persist
// analytics events.
//
// Grammar:
//
//	blob   := record (";" record)*
//	record := name ":" props
//	props  := prop ("," prop)*
//	prop   := key "=" value
//
// Separators are not escaped. Names, keys and values containing one of them
// will not survive a round trip.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/vburojevic/trk/internal/domain"
)

// Separators of the blob grammar
const (
	RecordSeparator   = ";"
	FieldSeparator    = ":"
	PropertySeparator = ","
	KeyValueSeparator = "="
)

var (
	// ErrMalformedRecord is returned for a record that does not match the grammar
	ErrMalformedRecord = errors.New("malformed record")
	// ErrSeparatorInValue reports a name, key or value that contains a separator
	ErrSeparatorInValue = errors.New("separator character in event")
)

const separators = RecordSeparator + FieldSeparator + PropertySeparator + KeyValueSeparator

// Codec encodes and decodes event blobs, logging dropped records
type Codec struct {
	logger *zap.Logger
}

// New creates a Codec. A nil logger disables logging.
func New(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

var defaultCodec = New(nil)

// Encode serializes events with the default codec
func Encode(events []domain.Event) string { return defaultCodec.Encode(events) }

// Decode parses a blob with the default codec
func Decode(blob string) []domain.Event { return defaultCodec.Decode(blob) }

// Encode serializes events in order. Properties keep insertion order.
func (c *Codec) Encode(events []domain.Event) string {
	records := lo.Map(events, func(e domain.Event, _ int) string {
		props := lo.Map(e.Properties, func(p domain.Property, _ int) string {
			return p.Key + KeyValueSeparator + p.Value
		})
		return e.Name + FieldSeparator + strings.Join(props, PropertySeparator)
	})
	return strings.Join(records, RecordSeparator)
}

// Decode parses a blob. Records that fail to parse are dropped and logged;
// Decode never fails.
func (c *Codec) Decode(blob string) []domain.Event {
	if blob == "" {
		return []domain.Event{}
	}
	return lo.FilterMap(strings.Split(blob, RecordSeparator), func(record string, i int) (domain.Event, bool) {
		event, err := parseRecord(record)
		if err != nil {
			c.logger.Warn("dropping malformed record",
				zap.Int("index", i),
				zap.String("record", record),
				zap.Error(err),
			)
			return domain.Event{}, false
		}
		return event, true
	})
}

// parseRecord parses one name:props record. The first malformed property
// fails the whole record.
func parseRecord(record string) (domain.Event, error) {
	parts := strings.Split(record, FieldSeparator)
	if len(parts) != 2 {
		return domain.Event{}, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedRecord, len(parts))
	}
	if parts[0] == "" {
		return domain.Event{}, fmt.Errorf("%w: empty event name", ErrMalformedRecord)
	}
	event := domain.Event{Name: parts[0]}
	if parts[1] == "" {
		return event, nil
	}
	for _, prop := range strings.Split(parts[1], PropertySeparator) {
		kv := strings.Split(prop, KeyValueSeparator)
		if len(kv) != 2 {
			return domain.Event{}, fmt.Errorf("%w: bad property %q", ErrMalformedRecord, prop)
		}
		event.Properties.Set(kv[0], kv[1])
	}
	return event, nil
}

// Validate reports whether event can be encoded without loss
func Validate(event domain.Event) error {
	if strings.ContainsAny(event.Name, separators) {
		return fmt.Errorf("%w: name %q", ErrSeparatorInValue, event.Name)
	}
	for _, p := range event.Properties {
		if strings.ContainsAny(p.Key, separators) {
			return fmt.Errorf("%w: key %q", ErrSeparatorInValue, p.Key)
		}
		if strings.ContainsAny(p.Value, separators) {
			return fmt.Errorf("%w: value of %q", ErrSeparatorInValue, p.Key)
		}
	}
	return nil
}

// ContainsSeparator reports whether s contains any blob separator
func ContainsSeparator(s string) bool {
	return strings.ContainsAny(s, separators)
}
