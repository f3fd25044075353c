package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/demprobe/internal/protocol"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var sampleRecords = []protocol.CombinedRecord{
	{Latitude: -36.885150, Longitude: 174.748030, Quality: 12.345},
	{Latitude: -36.886430, Longitude: 174.753750, Quality: 528.96},
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (Text{W: &buf}).Emit(context.Background(), sampleRecords); err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := "-36.885150,174.748030,12.3\n-36.886430,174.753750,529.0\n"
	if buf.String() != want {
		t.Fatalf("unexpected text:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteQuality(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuality(&buf, []float64{528.9, -0.001}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "528.900000\n-0.001000\n" {
		t.Fatalf("unexpected quality output %q", buf.String())
	}
}

func TestJSONLinesSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONLines{W: &buf}).Emit(context.Background(), sampleRecords); err != nil {
		t.Fatalf("emit: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var rec Record
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Index != 1 || rec.Quality != 528.96 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

type failingSink struct{ err error }

func (f failingSink) Emit(context.Context, []protocol.CombinedRecord) error { return f.err }

func TestMultiStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer
	err := Multi{failingSink{err: boom}, Text{W: &buf}}.Emit(context.Background(), sampleRecords)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected later sinks to be skipped")
	}
}

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }

func (t *fakeToken) Done() <-chan struct{} { return t.done }

func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	mqtt.Client
	published []published
	err       error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return newToken(c.err)
}

func TestMQTTSinkPublishesBatch(t *testing.T) {
	client := &fakeClient{}
	sink, err := NewMQTT(client, "demprobe/results")
	if err != nil {
		t.Fatalf("new mqtt: %v", err)
	}
	if err := sink.Emit(context.Background(), sampleRecords); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(client.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(client.published))
	}
	msg := client.published[0]
	if msg.topic != "demprobe/results" || msg.qos != 0 || msg.retained {
		t.Fatalf("unexpected publish options: %+v", msg)
	}
	var batch Batch
	if err := json.Unmarshal(msg.payload, &batch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if batch.Count != 2 || len(batch.Records) != 2 || batch.Records[0].Latitude != -36.885150 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestMQTTSinkErrors(t *testing.T) {
	if _, err := NewMQTT(&fakeClient{}, ""); !errors.Is(err, ErrNoTopic) {
		t.Fatalf("expected ErrNoTopic, got %v", err)
	}
	if _, err := DialMQTT(context.Background(), MQTTConfig{Broker: "tcp://localhost:1883"}); !errors.Is(err, ErrNoTopic) {
		t.Fatalf("expected ErrNoTopic from dial, got %v", err)
	}

	refused := errors.New("not connected")
	sink, err := NewMQTT(&fakeClient{err: refused}, "t")
	if err != nil {
		t.Fatalf("new mqtt: %v", err)
	}
	if err := sink.Emit(context.Background(), sampleRecords); !errors.Is(err, refused) {
		t.Fatalf("expected publish error, got %v", err)
	}
}
