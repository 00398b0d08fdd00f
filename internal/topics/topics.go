// Package topics holds the fixed topic vocabulary and the keyword classifier
// that decides topic relevance, topic drift, farewell intent, and media
// requests for incoming messages.
package topics

import (
	"strings"

	"saludbot/internal/textnorm"
)

// Topic identifies one of the subject domains the bot can discuss.
type Topic string

const (
	// Pediculosis covers head-lice infestation.
	Pediculosis Topic = "pediculosis"
	// Parasitismo covers general parasitic infection.
	Parasitismo Topic = "parasitismo"
)

// All returns the supported topics in declaration order. The order is the
// tie-break used by OtherTopic when a message matches several vocabularies.
func All() []Topic {
	return []Topic{Pediculosis, Parasitismo}
}

// Parse maps a raw selection value to a Topic.
func Parse(s string) (Topic, bool) {
	switch Topic(strings.ToLower(strings.TrimSpace(s))) {
	case Pediculosis:
		return Pediculosis, true
	case Parasitismo:
		return Parasitismo, true
	}
	return "", false
}

// Title returns the topic name with the first letter capitalized, for
// user-facing texts.
func (t Topic) Title() string {
	return textnorm.CapitalizeFirst(string(t))
}

var keywords = map[Topic][]string{
	Pediculosis: {
		"pediculosis",
		"piojos",
		"infestación",
		"tratamiento",
		"sintomas",
		"prevención",
		"liendres",
		"pelo",
		"cabeza",
		"cuerpo",
		"ropa",
		"peine",
		"insecticida",
		"lavado",
		"contagio",
		"picaduras",
		"puntitos",
		"picores",
	},
	Parasitismo: {
		"parasitismo",
		"parásitos",
		"infestación",
		"tratamiento",
		"sintomas",
		"prevención",
		"gusanos",
		"lombrices",
		"tenias",
		"ascaris",
		"anquilostomas",
		"tricocéfalos",
		"oxiuros",
		"amebas",
		"protozoos",
		"helmintos",
		"infección",
		"contagio",
		"diagnóstico",
		"medicamentos",
		"hospedador",
		"hospedero",
		"transmisión",
		"ciclo de vida",
		"huevos",
		"larvas",
		"adultos",
		"parasitosis",
		"parasitología",
		"parasitólogo",
		"parasitaria",
		"parasitarias",
		"parasitario",
		"parasitarios",
	},
}

var farewells = []string{
	"adiós",
	"hasta luego",
	"nos vemos",
	"me despido",
	"chao",
	"gracias",
	"bye",
}

var mediaTriggers = []string{
	"imagen",
	"foto",
	"ejemplo",
	"visual",
	"muestra",
	"infografía",
	"muéstrame imagenes",
	"muéstrame una imagen",
	"mostrar imagenes",
	"ver imagenes",
	"ver una imagen",
	"¿tienes fotos de piojos?",
	"¿tienes fotos de parásitos?",
	"¿qué aspecto tiene la pediculosis?",
	"¿qué aspecto tienen los parásitos?",
}

// RelatedTo reports whether text mentions any keyword of topic t. Keywords are
// matched as accent-normalized substrings, not whole words, so a short keyword
// can match inside a longer unrelated word. That is the documented vocabulary
// behaviour and is kept as-is.
func RelatedTo(text string, t Topic) bool {
	msg := textnorm.Normalize(text)
	for _, kw := range keywords[t] {
		if strings.Contains(msg, textnorm.Normalize(kw)) {
			return true
		}
	}
	return false
}

// OtherTopic returns the first topic other than current whose vocabulary
// matches text. Only the first match is reported even if several topics match.
func OtherTopic(text string, current Topic) (Topic, bool) {
	for _, t := range All() {
		if t == current {
			continue
		}
		if RelatedTo(text, t) {
			return t, true
		}
	}
	return "", false
}

// IsFarewell reports whether text reads like the user wants to end the
// conversation. Farewell phrases are matched case-folded but not
// accent-normalized: "adios" without the accent does not count.
func IsFarewell(text string) bool {
	msg := strings.ToLower(text)
	for _, p := range farewells {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// WantsMedia reports whether text is a request for images. Trigger phrases are
// matched case-folded, like farewells.
func WantsMedia(text string) bool {
	msg := strings.ToLower(text)
	for _, p := range mediaTriggers {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
