package experiment

import (
	"bytes"
	"encoding/json"
)

// Results maps each classified message to its predicted labels and
// serialises in the order messages were first added.
type Results struct {
	order  []string
	labels map[string][]string
}

// NewResults returns an empty Results.
func NewResults() *Results {
	return &Results{labels: make(map[string][]string)}
}

// Set records labels for message. A repeated message keeps its original
// position and takes the latest labels.
func (r *Results) Set(message string, labels []string) {
	if _, ok := r.labels[message]; !ok {
		r.order = append(r.order, message)
	}
	r.labels[message] = labels
}

// Len reports the number of distinct messages.
func (r *Results) Len() int { return len(r.order) }

// MarshalJSON writes a JSON object whose keys keep insertion order.
func (r *Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, message := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		labels := r.labels[message]
		if labels == nil {
			labels = []string{}
		}
		value, err := marshalNoEscape(labels)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
