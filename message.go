package dataflow

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var messageJSON = []byte(`{}`)

// Message is the immutable unit of data exchanged over a topic.
//
// Every view (raw bytes, text, number and creation time) is computed once when
// the message is built and never changes afterwards. The numeric view is NaN
// when the text does not parse as a number.
type Message struct {
	data      []byte
	text      string
	number    float64
	createdAt strfmt.DateTime
}

// NewMessage builds a message from text.
func NewMessage(text string) Message {
	return newMessage(text, strfmt.DateTime(time.Now()))
}

// FromFloat builds a message carrying a number, rendered with the shortest
// representation that round-trips.
func FromFloat(f float64) Message {
	return NewMessage(strconv.FormatFloat(f, 'g', -1, 64))
}

// FromBytes builds a message from raw bytes. The slice is copied.
func FromBytes(b []byte) Message {
	return NewMessage(string(b))
}

func newMessage(text string, createdAt strfmt.DateTime) Message {
	return Message{
		data:      []byte(text),
		text:      text,
		number:    parseNumber(text),
		createdAt: createdAt,
	}
}

func parseNumber(text string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Bytes returns a copy of the raw payload.
func (m Message) Bytes() []byte {
	return bytes.Clone(m.data)
}

// Text returns the payload as text.
func (m Message) Text() string {
	return m.text
}

// Float returns the numeric view of the payload, NaN when it is not a number.
func (m Message) Float() float64 {
	return m.number
}

// IsNumber reports whether the numeric view holds a value.
func (m Message) IsNumber() bool {
	return !math.IsNaN(m.number)
}

// CreatedAt returns when the message was built.
func (m Message) CreatedAt() time.Time {
	return time.Time(m.createdAt)
}

func (m Message) String() string {
	return m.text
}

// MarshalJSON renders the message as {"text","number","created_at"}; number is
// null when the payload is not numeric.
func (m Message) MarshalJSON() ([]byte, error) {
	result := messageJSON

	var err error
	result, err = sjson.SetBytes(result, "text", m.text)
	if err != nil {
		return nil, err
	}
	if m.IsNumber() && !math.IsInf(m.number, 0) {
		result, err = sjson.SetBytes(result, "number", m.number)
	} else {
		result, err = sjson.SetRawBytes(result, "number", []byte("null"))
	}
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "created_at", m.createdAt.String())
}

// UnmarshalJSON rebuilds a message from its text and creation time. The
// numeric view is derived from the text again.
func (m *Message) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid message json")
	}
	parsed := gjson.ParseBytes(data)

	createdAt := strfmt.DateTime(time.Now())
	if ts := parsed.Get("created_at"); ts.Exists() {
		dt, err := strfmt.ParseDateTime(ts.String())
		if err != nil {
			return fmt.Errorf("invalid created_at: %w", err)
		}
		createdAt = dt
	}
	*m = newMessage(parsed.Get("text").String(), createdAt)
	return nil
}
