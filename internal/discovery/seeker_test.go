package discovery

import (
	"testing"
	"time"
)

func TestSeekWithNoRespondersReturnsEmptyNotError(t *testing.T) {
	peers, err := Seek(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("expected no error when no advertisers are present, got %v", err)
	}
	if peers == nil {
		t.Log("peers is nil, which is an acceptable empty result")
	}
}

func TestAdvertiserSeekerRoundTrip(t *testing.T) {
	adv := NewAdvertiser(7777, 0)
	adv.Start()
	defer adv.Stop()

	peers, err := Seek(1500 * time.Millisecond)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	selfIP := LocalIPv4()
	for _, p := range peers {
		if p.IP == selfIP {
			t.Errorf("seek should exclude the local advertiser's own IP, found %s", p.IP)
		}
	}
}
