package topics

import "testing"

func TestEveryKeywordMatchesItsTopic(t *testing.T) {
	for topic, words := range keywords {
		for _, kw := range words {
			if !RelatedTo(kw, topic) {
				t.Errorf("RelatedTo(%q, %s) = false", kw, topic)
			}
		}
	}
}

func TestRelatedToAccentVariants(t *testing.T) {
	if !RelatedTo("¿Qué son las LIENDRES?", Pediculosis) {
		t.Error("expected liendres to match pediculosis")
	}
	if !RelatedTo("sintomas de lombrices", Parasitismo) {
		t.Error("expected lombrices to match parasitismo")
	}
	if !RelatedTo("prevencion", Pediculosis) {
		t.Error("accent-stripped keyword should still match")
	}
}

func TestUnrelatedTextMatchesNothing(t *testing.T) {
	const msg = "me encanta el futbol"
	for _, topic := range All() {
		if RelatedTo(msg, topic) {
			t.Errorf("RelatedTo(%q, %s) = true", msg, topic)
		}
	}
	if other, ok := OtherTopic(msg, Pediculosis); ok {
		t.Errorf("OtherTopic returned %s for unrelated text", other)
	}
}

func TestOtherTopicSkipsCurrent(t *testing.T) {
	other, ok := OtherTopic("síntomas de lombrices", Pediculosis)
	if !ok || other != Parasitismo {
		t.Fatalf("OtherTopic = %s, %v; want parasitismo, true", other, ok)
	}
	// "contagio" belongs to both vocabularies; with parasitismo current the
	// first (and only) remaining topic wins.
	other, ok = OtherTopic("contagio", Parasitismo)
	if !ok || other != Pediculosis {
		t.Fatalf("OtherTopic = %s, %v; want pediculosis, true", other, ok)
	}
}

func TestOtherTopicDeclarationOrder(t *testing.T) {
	// A message matching both vocabularies reports the first declared topic
	// that is not the current one.
	const msg = "tratamiento"
	if other, ok := OtherTopic(msg, ""); !ok || other != Pediculosis {
		t.Fatalf("OtherTopic = %s, %v; want pediculosis first", other, ok)
	}
}

func TestIsFarewell(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Gracias, bye!", true},
		{"adiós", true},
		{"Hasta Luego", true},
		{"no se", false},
		{"adios", false}, // farewell matching is not accent-normalized
	}
	for _, tc := range cases {
		if got := IsFarewell(tc.text); got != tc.want {
			t.Errorf("IsFarewell(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestWantsMedia(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"muéstrame una imagen de parasitismo", true},
		{"¿Tienes alguna FOTO?", true},
		{"quiero ver una infografía sobre pediculosis", true},
		{"¿qué son las liendres?", false},
	}
	for _, tc := range cases {
		if got := WantsMedia(tc.text); got != tc.want {
			t.Errorf("WantsMedia(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	if topic, ok := Parse("Pediculosis"); !ok || topic != Pediculosis {
		t.Errorf("Parse(Pediculosis) = %s, %v", topic, ok)
	}
	if _, ok := Parse("gripe"); ok {
		t.Error("Parse(gripe) should fail")
	}
}

func TestTitle(t *testing.T) {
	if got := Parasitismo.Title(); got != "Parasitismo" {
		t.Errorf("Title() = %q", got)
	}
}
