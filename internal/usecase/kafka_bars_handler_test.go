package usecase

import (
	"context"
	"testing"
	"time"
)

func TestKafkaBarsHandleStoresBar(t *testing.T) {
	sink := &recordSink{}
	h := NewKafkaBarsHandler("bars", sink, nopMetrics{})

	msg := []byte(`{"symbol":"AAPL","d":1714521600,"o":170.1,"h":172.5,"l":169.8,"c":171.3,"v":55000000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.bars) != 1 {
		t.Fatalf("expected 1 stored bar, got %d", len(sink.bars))
	}
	b := sink.bars[0]
	if b.Symbol != "AAPL" || b.Close != 171.3 {
		t.Errorf("unexpected bar %+v", b)
	}
	if b.Date != time.Unix(1714521600, 0).UTC() {
		t.Errorf("unexpected date %v", b.Date)
	}
}

func TestKafkaBarsHandleMillisTimestamp(t *testing.T) {
	sink := &recordSink{}
	h := NewKafkaBarsHandler("bars", sink, nopMetrics{})

	msg := []byte(`{"symbol":"AAPL","d":1714521600000,"o":1,"h":1,"l":1,"c":1,"v":1}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sink.bars[0].Date; got != time.Unix(1714521600, 0).UTC() {
		t.Errorf("ms timestamp not normalized: %v", got)
	}
}

func TestKafkaBarsHandleBadPayload(t *testing.T) {
	h := NewKafkaBarsHandler("bars", &recordSink{}, nopMetrics{})
	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestKafkaBarsTopic(t *testing.T) {
	h := NewKafkaBarsHandler("daily.bars", &recordSink{}, nopMetrics{})
	if h.Topic() != "daily.bars" {
		t.Fatalf("unexpected topic %s", h.Topic())
	}
}
