package mq

import "testing"

func TestMemoryStorePendingPublishLifecycle(t *testing.T) {
	store := newMemoryStore()

	store.AddPendingPublish(&PendingPublish{PacketID: 1, Topic: "a"})
	if !store.HasPacketID(1) {
		t.Fatal("HasPacketID(1) = false after AddPendingPublish")
	}

	p, ok := store.GetPendingPublish(1)
	if !ok || p.Topic != "a" {
		t.Fatalf("GetPendingPublish(1) = %v, %v; want topic a", p, ok)
	}

	store.RemovePendingPublish(1)
	if store.HasPacketID(1) {
		t.Fatal("HasPacketID(1) = true after RemovePendingPublish")
	}
	if _, ok := store.GetPendingPublish(1); ok {
		t.Fatal("GetPendingPublish(1) returned ok=true after removal")
	}
}

func TestMemoryStorePendingUnsubscribeLifecycle(t *testing.T) {
	store := newMemoryStore()

	store.AddPendingUnsubscribe(&PendingUnsubscribe{PacketID: 9, Topics: []string{"a/b"}})
	if !store.HasPacketID(9) {
		t.Fatal("HasPacketID(9) = false after AddPendingUnsubscribe")
	}

	store.RemovePendingUnsubscribe(9)
	if store.HasPacketID(9) {
		t.Fatal("HasPacketID(9) = true after RemovePendingUnsubscribe")
	}
}

func TestMemoryStoreSubscriptionsDedupByFilter(t *testing.T) {
	store := newMemoryStore()

	first := &Subscription{Filter: "a/b", QoS: 0}
	second := &Subscription{Filter: "a/b", QoS: 1}
	store.AddSubscription(first)
	store.AddSubscription(second)

	subs := store.Subscriptions()
	if len(subs) != 1 {
		t.Fatalf("len(Subscriptions()) = %d, want 1", len(subs))
	}
	if subs[0].QoS != 1 {
		t.Errorf("QoS = %d, want 1 (second Add should replace first)", subs[0].QoS)
	}

	store.RemoveSubscription("a/b")
	if len(store.Subscriptions()) != 0 {
		t.Fatal("expected no subscriptions after RemoveSubscription")
	}
}

func TestMemoryStoreSubscriptionsByMessageID(t *testing.T) {
	store := newMemoryStore()
	store.AddSubscription(&Subscription{Filter: "a/b", MessageID: 5})
	store.AddSubscription(&Subscription{Filter: "c/d", MessageID: 5})
	store.AddSubscription(&Subscription{Filter: "e/f", MessageID: 6})

	subs := store.SubscriptionsByMessageID(5)
	if len(subs) != 2 {
		t.Fatalf("len(SubscriptionsByMessageID(5)) = %d, want 2", len(subs))
	}

	if subs := store.SubscriptionsByMessageID(99); len(subs) != 0 {
		t.Fatalf("len(SubscriptionsByMessageID(99)) = %d, want 0", len(subs))
	}
}

func TestMemoryStoreReset(t *testing.T) {
	store := newMemoryStore()
	store.AddPendingPublish(&PendingPublish{PacketID: 1})
	store.AddPendingUnsubscribe(&PendingUnsubscribe{PacketID: 2})
	store.AddSubscription(&Subscription{Filter: "a"})

	store.Reset()

	if len(store.PendingPublishes()) != 0 {
		t.Error("PendingPublishes not cleared by Reset")
	}
	if len(store.PendingUnsubscribes()) != 0 {
		t.Error("PendingUnsubscribes not cleared by Reset")
	}
	if len(store.Subscriptions()) != 0 {
		t.Error("Subscriptions not cleared by Reset")
	}
	if store.HasPacketID(1) || store.HasPacketID(2) {
		t.Error("HasPacketID true after Reset")
	}
}
