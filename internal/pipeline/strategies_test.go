package pipeline

import (
	"math"
	"testing"

	"mroparse/internal"
	"mroparse/internal/lexicon"
)

func TestLabelPN(t *testing.T) {
	lex := lexicon.Build(nil)

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"VALVE SOLENOID PN: 8210G95 BRASS", "8210G95", true},
		{"FITTING P/N: ABC-123 STEEL", "ABC-123", true},
		{"PUMP MODEL: 3196 XLT", "3196", true},
		// The captured token is a voltage rating, not a part number.
		{"HEATER PN: 480V 3000W", "", false},
		{"BEARING,BALL,6205", "", false},
	}
	for _, tt := range tests {
		c, ok := labelPN(lex, tt.text)
		if ok != tt.ok || c.Value != tt.want {
			t.Errorf("labelPN(%q) = %q, %t; want %q, %t", tt.text, c.Value, ok, tt.want, tt.ok)
		}
		if ok && c.Confidence != 0.95 {
			t.Errorf("labelPN(%q) confidence = %v", tt.text, c.Confidence)
		}
	}
}

func TestPrefixPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := prefixPN(lex, wordTokens("CONN,HUBCS120W"))
	if !ok || c.Value != "CS120W" || c.Confidence != 0.75 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}
	if c.Strategy != internal.StrategyPrefixDecode {
		t.Fatalf("strategy = %s", c.Strategy)
	}

	// Four-letter composite prefixes carry the higher confidence.
	c, ok = prefixPN(lex, wordTokens("ASCO8210G95"))
	if !ok || c.Value != "8210G95" || c.Confidence != 0.82 {
		t.Fatalf("composite: got %+v ok=%t", c, ok)
	}

	// Remainder is a rating, not a catalog code.
	if _, ok := prefixPN(lex, wordTokens("SIE480V")); ok {
		t.Fatal("spec-value remainder accepted")
	}
	// Bare manufacturer name, nothing to decode.
	if _, ok := prefixPN(lex, wordTokens("HUBBELL")); ok {
		t.Fatal("plain name decoded")
	}
}

func TestDashCatalogPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := dashCatalogPN(lex, "PCMB-8 - PANEL MOUNT BRACKET")
	if !ok || c.Value != "PCMB-8" || c.Confidence != 0.80 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}

	c, ok = dashCatalogPN(lex, "TB-123/A / TERMINAL BLOCK 10 POLE")
	if !ok || c.Value != "TB-123/A" {
		t.Fatalf("slash separator: got %+v ok=%t", c, ok)
	}

	// Glued vendor prefix belongs to the decode strategy.
	if _, ok := dashCatalogPN(lex, "HUBCS120W - WALLPLATE"); ok {
		t.Fatal("glued prefix head accepted")
	}
	// Head must mix letters and digits.
	if _, ok := dashCatalogPN(lex, "VALVE - BRASS BODY"); ok {
		t.Fatal("word head accepted")
	}
	if _, ok := dashCatalogPN(lex, "A1 - THING"); ok {
		t.Fatal("short head accepted")
	}
}

func TestEmbeddedPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := embeddedPN(lex, commaTokens("DRV,3AXD50000731121,5HP"))
	if !ok || c.Value != "3AXD50000731121" || c.Confidence != 0.72 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}

	// The code has to be interior: a two-token line has no middle.
	if _, ok := embeddedPN(lex, commaTokens("DRV,3AXD50000731121")); ok {
		t.Fatal("two-token line accepted")
	}
	// Interior token too short to be an embedded code.
	if _, ok := embeddedPN(lex, commaTokens("PUMP,AB123,5HP")); ok {
		t.Fatal("short interior token accepted")
	}
}

func TestStructuredPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := structuredPN(lex, "BRACKET PCMB-8 WITH KIT PCMB-8-KIT-22")
	if !ok || c.Value != "PCMB-8-KIT-22" || c.Confidence != 0.70 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}

	// Thread sizes segment like part numbers but have no letters.
	if _, ok := structuredPN(lex, "HOSE 3/4-16 END"); ok {
		t.Fatal("thread size accepted")
	}
	// Blocked internal-code prefix.
	if _, ok := structuredPN(lex, "CONVEYOR N71-234 SPARE"); ok {
		t.Fatal("invalid prefix accepted")
	}
}

func TestTrailingCatalogPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := trailingCatalogPN(lex, commaTokens("SWITCH,DISCONNECT,80A,7815N15"))
	if !ok || c.Value != "7815N15" || c.Confidence != 0.68 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}

	// Comma-packed code lists fail the mostly-words gate.
	if _, ok := trailingCatalogPN(lex, commaTokens("AB123,CD456,EF789")); ok {
		t.Fatal("code list accepted")
	}
	if _, ok := trailingCatalogPN(lex, commaTokens("7815N15")); ok {
		t.Fatal("single token accepted")
	}
}

func TestFirstTokenPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := firstTokenPN(lex, commaTokens("PCMB-8,PANEL MOUNT BRACKET"))
	if !ok || c.Value != "PCMB-8" || c.Confidence != 0.68 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}
	if c.Strategy != internal.StrategyFirstTokenCatalog {
		t.Fatalf("strategy = %s", c.Strategy)
	}

	if _, ok := firstTokenPN(lex, commaTokens("VALVE,BRASS,2IN")); ok {
		t.Fatal("word first token accepted")
	}
}

func TestPureCatalogPN(t *testing.T) {
	lex := lexicon.Build(nil)

	c, ok := pureCatalogPN(lex, "7815N15")
	if !ok || c.Value != "7815N15" || c.Confidence != 0.60 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}
	if c.Strategy != internal.StrategyPNStructured {
		t.Fatalf("strategy = %s", c.Strategy)
	}

	if _, ok := pureCatalogPN(lex, "ABC123DEF456GHI789JKL0123"); ok {
		t.Fatal("25-char token accepted")
	}
	if _, ok := pureCatalogPN(lex, "ABC 123"); ok {
		t.Fatal("spaced text accepted")
	}
}

func TestTrailingNumericPN(t *testing.T) {
	c, ok := trailingNumericPN(commaTokens("BEARING,PILLOW BLOCK,22226072"))
	if !ok || c.Value != "22226072" || c.Confidence != 0.50 {
		t.Fatalf("got %+v ok=%t", c, ok)
	}

	c, ok = trailingNumericPN(commaTokens("GASKET,1234-5678"))
	if !ok || c.Value != "1234-5678" {
		t.Fatalf("dashed digits: got %+v ok=%t", c, ok)
	}

	// Six digits reads like a quantity or a spec, not an item code.
	if _, ok := trailingNumericPN(commaTokens("SEAL,123456")); ok {
		t.Fatal("short numeric accepted")
	}
}

func TestHeuristicPNScores(t *testing.T) {
	lex := lexicon.Build(nil)

	tests := []struct {
		tok  string
		want float64
	}{
		{"XCK-J123", 0.65},        // letters, dash, good length
		{"3AXD50000731121", 0.65}, // long undashed code
		{"ISO9001", 0.45},         // standards designation penalty
		{"22226072", 0.45},        // digits only
		{"N71234", 0.45},          // blocked prefix penalty
	}
	for _, tt := range tests {
		out := heuristicPN(lex, []string{tt.tok})
		if len(out) != 1 {
			t.Fatalf("heuristicPN(%q) returned %d candidates", tt.tok, len(out))
		}
		if math.Abs(out[0].Confidence-tt.want) > 1e-9 {
			t.Errorf("heuristicPN(%q) = %v, want %v", tt.tok, out[0].Confidence, tt.want)
		}
		if out[0].Strategy != internal.StrategyHeuristic {
			t.Errorf("heuristicPN(%q) strategy = %s", tt.tok, out[0].Strategy)
		}
	}

	// Descriptor-shaped and spaced tokens produce nothing at all.
	if out := heuristicPN(lex, []string{"4-BOLT", "AB 123"}); len(out) != 0 {
		t.Fatalf("got %d candidates from junk tokens", len(out))
	}
}

func TestPNCandidatesPool(t *testing.T) {
	lex := lexicon.Build(nil)

	pool := PNCandidates(lex, []string{"CONN,HUBCS120W"})
	if len(pool) != 2 {
		t.Fatalf("pool size = %d: %+v", len(pool), pool)
	}
	// Priority order, and the duplicate heuristic hit on HUBCS120W keeps the
	// stronger trailing-catalog tag.
	if pool[0].Value != "CS120W" || pool[0].Strategy != internal.StrategyPrefixDecode {
		t.Fatalf("pool[0] = %+v", pool[0])
	}
	if pool[1].Value != "HUBCS120W" || pool[1].Strategy != internal.StrategyTrailingCatalog {
		t.Fatalf("pool[1] = %+v", pool[1])
	}
}

func TestPNCandidatesSecondarySource(t *testing.T) {
	lex := lexicon.Build(nil)

	pool := PNCandidates(lex, []string{"VALVE BRASS", "PN: 8210G95"})
	if len(pool) != 1 {
		t.Fatalf("pool size = %d: %+v", len(pool), pool)
	}
	if pool[0].Value != "8210G95" || pool[0].Strategy != internal.StrategyLabel || pool[0].Confidence != 0.95 {
		t.Fatalf("pool[0] = %+v", pool[0])
	}
}
