package domain

import (
	"strings"

	"github.com/samber/lo"
)

// Property is a single key/value pair attached to an event
type Property struct {
	Key   string
	Value string
}

// Properties is an insertion-ordered set of string properties with unique keys
type Properties []Property

// NewProperties builds Properties from alternating key, value arguments.
// A trailing key without a value is ignored.
func NewProperties(kv ...string) Properties {
	var p Properties
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

// Set adds key or replaces its value in place
func (p *Properties) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: value})
}

// Get returns the value for key
func (p Properties) Get(key string) (string, bool) {
	prop, ok := lo.Find(p, func(item Property) bool { return item.Key == key })
	return prop.Value, ok
}

// Keys returns property keys in insertion order
func (p Properties) Keys() []string {
	return lo.Map(p, func(item Property, _ int) string { return item.Key })
}

// Clone returns an independent copy
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	copy(out, p)
	return out
}

// String renders properties as {k=v, k2=v2}
func (p Properties) String() string {
	pairs := lo.Map(p, func(item Property, _ int) string { return item.Key + "=" + item.Value })
	return "{" + strings.Join(pairs, ", ") + "}"
}

// Event is a named analytics occurrence
type Event struct {
	Name       string
	Properties Properties
}

// NewEvent creates an event with the given alternating key, value properties
func NewEvent(name string, kv ...string) Event {
	return Event{Name: name, Properties: NewProperties(kv...)}
}

// Clone returns a deep copy of the event
func (e Event) Clone() Event {
	return Event{Name: e.Name, Properties: e.Properties.Clone()}
}

// Well-known event and property names
const (
	ScreenTimeEvent       = "ScreenTime"
	PropScreenName        = "screenName"
	PropDurationInSeconds = "durationInSeconds"
	PropEventTime         = "eventTime"
)
