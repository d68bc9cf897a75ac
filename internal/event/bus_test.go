package event

import (
	"context"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublish_TopicsInSubscriptionOrder(t *testing.T) {
	b := NewBus(zap.NewNop())

	var got []string
	b.Subscribe(TopicSettingsUpdated, func(_ context.Context, e Event) {
		got = append(got, "first:"+e.Topic)
	})
	b.Subscribe(TopicThemeChanged, func(_ context.Context, e Event) {
		got = append(got, "theme:"+e.Topic)
	})
	b.Subscribe(TopicSettingsUpdated, func(_ context.Context, e Event) {
		got = append(got, "second:"+e.Topic)
	})

	if err := b.Publish(context.Background(), Event{Topic: TopicSettingsUpdated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	_ = b.Publish(context.Background(), Event{Topic: TopicThemeChanged})
	_ = b.Publish(context.Background(), Event{Topic: "unrouted"})

	want := []string{"first:settings.updated", "second:settings.updated", "theme:theme.changed"}
	if len(got) != len(want) {
		t.Fatalf("deliveries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPublish_SetsTimestamp(t *testing.T) {
	b := NewBus(nil)

	var e Event
	b.Subscribe(TopicThemeChanged, func(_ context.Context, got Event) { e = got })
	_ = b.Publish(context.Background(), Event{Topic: TopicThemeChanged})

	if e.Timestamp.IsZero() {
		t.Error("Timestamp not set on publish")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus(zap.NewNop())

	var calls int
	cancel := b.Subscribe(TopicThemeChanged, func(context.Context, Event) { calls++ })
	b.Subscribe(TopicThemeChanged, func(context.Context, Event) { calls += 10 })

	_ = b.Publish(context.Background(), Event{Topic: TopicThemeChanged})
	cancel()
	_ = b.Publish(context.Background(), Event{Topic: TopicThemeChanged})

	if calls != 21 {
		t.Errorf("calls = %d, want 21", calls)
	}
}

func TestPublish_PanicIsolated(t *testing.T) {
	b := NewBus(zap.NewNop())

	var reached bool
	b.Subscribe(TopicSettingsUpdated, func(context.Context, Event) { panic("bad handler") })
	b.Subscribe(TopicSettingsUpdated, func(context.Context, Event) { reached = true })

	if err := b.Publish(context.Background(), Event{Topic: TopicSettingsUpdated, Source: "test"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !reached {
		t.Error("handler after a panicking one was not called")
	}
}
