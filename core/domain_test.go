package core

import "testing"

func TestParseAudience(t *testing.T) {
	cases := map[string]Audience{
		"":         AudienceNone,
		"none":     AudienceNone,
		"Only-Me":  AudienceOnlyMe,
		"friends":  AudienceFriends,
		"EVERYONE": AudienceEveryone,
	}
	for input, want := range cases {
		got, err := ParseAudience(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := ParseAudience("strangers"); err == nil {
		t.Fatalf("expected unknown audience to fail")
	}
}

func TestAudienceSystemAudience(t *testing.T) {
	if AudienceNone.SystemAudience() != SystemAudienceAbsent {
		t.Fatalf("expected none to map to absent")
	}
	if AudienceEveryone.SystemAudience() != SystemAudienceEveryone {
		t.Fatalf("expected everyone mapping")
	}
	if Audience("bogus").SystemAudience() != SystemAudienceAbsent {
		t.Fatalf("expected unknown audience to map to absent")
	}
}

func TestRenewalResultString(t *testing.T) {
	if RenewalRenewed.String() != "renewed" || RenewalFailed.String() != "failed" {
		t.Fatalf("unexpected result names")
	}
	if RenewalResult(9).String() != "renewal_result(9)" {
		t.Fatalf("unexpected fallback name %q", RenewalResult(9).String())
	}
}
