package protect

import "testing"

func TestClassify_NoMatchIsAllow(t *testing.T) {
	p := New([]Namespace{{Prefix: "billing:", Level: Block}})
	if got := p.Classify("user:9"); got != Allow {
		t.Fatalf("Classify(no match) = %v, want Allow", got)
	}
}

func TestClassify_NilPolicyIsAllow(t *testing.T) {
	var p *Policy
	if got := p.Classify("anything"); got != Allow {
		t.Fatalf("Classify(nil policy) = %v, want Allow", got)
	}
}

// TestClassify_S5 and TestClassify_P9 exercise the spec's worked example
// and the general precedence property: with overlapping rules, the
// earliest-declared matching rule wins regardless of prefix length.
func TestClassify_S5(t *testing.T) {
	p := New([]Namespace{
		{Prefix: "billing:", Level: Block},
		{Prefix: "user:", Level: Confirm},
	})
	if got := p.Classify("billing:acct:1"); got != Block {
		t.Fatalf("Classify(billing:acct:1) = %v, want Block", got)
	}
	if got := p.Classify("user:9"); got != Confirm {
		t.Fatalf("Classify(user:9) = %v, want Confirm", got)
	}
}

func TestClassify_P9_FirstDeclaredRuleWins(t *testing.T) {
	p := New([]Namespace{
		{Prefix: "a", Level: Warn},
		{Prefix: "ab", Level: Block},
	})
	// "abc" matches both "a" and "ab"; the first declared ("a", Warn) wins.
	if got := p.Classify("abc"); got != Warn {
		t.Fatalf("Classify(abc) = %v, want Warn (first declared rule)", got)
	}

	p2 := New([]Namespace{
		{Prefix: "ab", Level: Block},
		{Prefix: "a", Level: Warn},
	})
	if got := p2.Classify("abc"); got != Block {
		t.Fatalf("Classify(abc) with reordered rules = %v, want Block", got)
	}
}

func TestClassify_EmptyRuleList(t *testing.T) {
	p := New(nil)
	if got := p.Classify("anything"); got != Allow {
		t.Fatalf("Classify(empty policy) = %v, want Allow", got)
	}
}
