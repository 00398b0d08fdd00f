package dialog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"saludbot/internal/session"
	"saludbot/internal/topics"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
	seen  []session.Message
}

func (g *fakeGenerator) Generate(_ context.Context, history []session.Message) (string, error) {
	g.calls++
	g.seen = append([]session.Message(nil), history...)
	return g.reply, g.err
}

type fakeMedia struct {
	cards []Card
	err   error
	calls int
	query string
}

func (m *fakeMedia) Lookup(_ context.Context, query string) ([]Card, error) {
	m.calls++
	m.query = query
	return m.cards, m.err
}

func newTestController(gen *fakeGenerator, media *fakeMedia) (*Controller, *session.Store) {
	store := session.NewStore()
	return New(store, gen, media, 0, 0), store
}

func text(t *testing.T, a Action) string {
	t.Helper()
	ta, ok := a.(TextAction)
	if !ok {
		t.Fatalf("action = %T, want TextAction", a)
	}
	return ta.Text
}

func menu(t *testing.T, a Action) MenuAction {
	t.Helper()
	ma, ok := a.(MenuAction)
	if !ok {
		t.Fatalf("action = %T, want MenuAction", a)
	}
	return ma
}

func one(t *testing.T, actions []Action, err error) Action {
	t.Helper()
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	return actions[0]
}

const userID int64 = 42

func TestFullConversationFlow(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{reply: "Los piojos se eliminan con lociones específicas."}
	c, store := newTestController(gen, &fakeMedia{})

	// First contact: session created, name requested, text not recorded.
	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "hola"})
	got := text(t, one(t, actions, err))
	if got != textAskName {
		t.Errorf("greeting = %q", got)
	}
	sess, ok := store.Get(userID)
	if !ok {
		t.Fatal("session not created")
	}
	if sess.Name != "" || len(sess.History) != 0 {
		t.Errorf("fresh session mutated: name=%q history=%d", sess.Name, len(sess.History))
	}

	// Second message becomes the name; the topic menu follows.
	actions, err = c.HandleText(ctx, TextMessage{UserID: userID, Text: "Juan"})
	m := menu(t, one(t, actions, err))
	if sess.Name != "juan" {
		t.Errorf("stored name = %q, want juan", sess.Name)
	}
	if want := "Hola 🙋‍♂️ Juan, bienvenido a Pediculosis y Parasitismo Bot🤖. Escoge una de las siguientes opciones:"; m.Text != want {
		t.Errorf("menu text = %q", m.Text)
	}
	if len(m.Options) != 2 || m.Options[0].Value != SelectPediculosis || m.Options[1].Value != SelectParasitismo {
		t.Errorf("menu options = %+v", m.Options)
	}

	// Text before a topic is chosen only re-prompts.
	actions, err = c.HandleText(ctx, TextMessage{UserID: userID, Text: "tengo piojos"})
	if got := text(t, one(t, actions, err)); got != textPickFromMenu {
		t.Errorf("pre-topic reply = %q", got)
	}

	// Topic selection acknowledges by name and topic.
	actions, err = c.HandleSelection(ctx, Selection{UserID: userID, Value: SelectPediculosis})
	got = text(t, one(t, actions, err))
	if want := "Juan, has seleccionado pediculosis. ¿En qué puedo ayudarte?🤝"; got != want {
		t.Errorf("ack = %q", got)
	}
	if sess.Topic != topics.Pediculosis {
		t.Errorf("topic = %q", sess.Topic)
	}

	// On-topic question goes through the generator and lands in history.
	actions, err = c.HandleText(ctx, TextMessage{UserID: userID, Text: "¿cómo elimino las liendres?"})
	got = text(t, one(t, actions, err))
	if got != gen.reply {
		t.Errorf("reply = %q", got)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d", gen.calls)
	}
	if len(gen.seen) != 1 || gen.seen[0].Role != session.RoleUser {
		t.Errorf("generator saw history %+v", gen.seen)
	}
	if len(sess.History) != 2 || sess.History[1].Role != session.RoleAssistant || sess.History[1].Content != gen.reply {
		t.Errorf("history = %+v", sess.History)
	}
}

func TestTopicDrift(t *testing.T) {
	ctx := context.Background()
	c, store := newTestController(&fakeGenerator{}, &fakeMedia{})
	seedSession(store, "ana", topics.Pediculosis)

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "¿qué son las lombrices?"})
	m := menu(t, one(t, actions, err))
	want := "Parece que tu pregunta está relacionada con parasitismo. " +
		"Sin embargo, seleccionaste el tema pediculosis. " +
		"Por favor, selecciona el tema correcto o formula una pregunta sobre pediculosis."
	if m.Text != want {
		t.Errorf("drift text = %q", m.Text)
	}
	if len(m.Options) != 2 || m.Options[0].Value != SelectChangeTopic || m.Options[1].Value != SelectKeepTopic {
		t.Errorf("drift options = %+v", m.Options)
	}
	if m.Options[1].Label != "Seguir con Pediculosis" {
		t.Errorf("keep label = %q", m.Options[1].Label)
	}

	sess, _ := store.Get(userID)
	if sess.Topic != topics.Pediculosis {
		t.Errorf("drift changed topic to %q", sess.Topic)
	}

	// Going back clears the topic and re-greets by stored name.
	actions, err = c.HandleSelection(ctx, Selection{UserID: userID, Value: SelectChangeTopic})
	back := menu(t, one(t, actions, err))
	if sess.Topic != "" {
		t.Errorf("topic not cleared: %q", sess.Topic)
	}
	if want := "Hola 🙋‍♂️ Ana, bienvenido a Pediculosis y Parasitismo Bot🤖. Escoge una de las siguientes opciones:"; back.Text != want {
		t.Errorf("re-greet = %q", back.Text)
	}
}

func TestContinueSameIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, store := newTestController(&fakeGenerator{}, &fakeMedia{})
	seedSession(store, "ana", topics.Parasitismo)
	sess, _ := store.Get(userID)
	sess.Append(session.RoleUser, "pregunta")

	for i := 0; i < 2; i++ {
		actions, err := c.HandleSelection(ctx, Selection{UserID: userID, Value: SelectKeepTopic})
		got := text(t, one(t, actions, err))
		if want := "Por favor, continúa formulando preguntas sobre Parasitismo."; got != want {
			t.Errorf("continue text = %q", got)
		}
	}
	if sess.Topic != topics.Parasitismo || len(sess.History) != 1 {
		t.Errorf("continue-same mutated session: topic=%q history=%d", sess.Topic, len(sess.History))
	}
}

func TestFarewellConfirmation(t *testing.T) {
	ctx := context.Background()
	c, store := newTestController(&fakeGenerator{}, &fakeMedia{})
	seedSession(store, "luis", topics.Pediculosis)
	sess, _ := store.Get(userID)

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "gracias por todo"})
	m := menu(t, one(t, actions, err))
	if m.Text != textConfirmLeave {
		t.Errorf("confirm prompt = %q", m.Text)
	}
	if len(m.Options) != 2 || m.Options[0].Value != SelectConfirmLeave || m.Options[1].Value != SelectConfirmStay {
		t.Errorf("confirm options = %+v", m.Options)
	}
	if !sess.AwaitingConfirmation {
		t.Error("AwaitingConfirmation not set")
	}

	// Off-topic text while awaiting re-prompts with the same keyboard.
	actions, err = c.HandleText(ctx, TextMessage{UserID: userID, Text: "quiero una pizza"})
	rm := menu(t, one(t, actions, err))
	if rm.Text != textConfirmReprompt {
		t.Errorf("re-prompt = %q", rm.Text)
	}

	// Declining keeps the session and clears the flag.
	actions, err = c.HandleSelection(ctx, Selection{UserID: userID, Value: SelectConfirmStay})
	if got := text(t, one(t, actions, err)); got != textHowElse {
		t.Errorf("stay reply = %q", got)
	}
	if sess.AwaitingConfirmation {
		t.Error("AwaitingConfirmation not cleared")
	}

	// Confirming destroys the session; the next text starts over.
	actions, err = c.HandleText(ctx, TextMessage{UserID: userID, Text: "gracias"})
	menu(t, one(t, actions, err))
	actions, err = c.HandleSelection(ctx, Selection{UserID: userID, Value: SelectConfirmLeave})
	if got := text(t, one(t, actions, err)); got != textFarewell {
		t.Errorf("farewell = %q", got)
	}
	if _, ok := store.Get(userID); ok {
		t.Error("session survived confirm")
	}
	actions, err = c.HandleText(ctx, TextMessage{UserID: userID, Text: "hola de nuevo"})
	if got := text(t, one(t, actions, err)); got != textAskName {
		t.Errorf("restart greeting = %q", got)
	}
}

func TestMediaRequestFiltersByTopic(t *testing.T) {
	ctx := context.Background()
	media := &fakeMedia{cards: []Card{
		{Topic: topics.Parasitismo, PhotoURL: "https://img/1.png", Title: "Parasitismo", Buttons: []LinkButton{{Label: "Ver más", URL: "https://x"}}},
		{Topic: topics.Pediculosis, PhotoURL: "https://img/2.png", Title: "Pediculosis", Buttons: []LinkButton{{Label: "Ver más", URL: "https://y"}}},
		{Topic: topics.Pediculosis, Title: "Pediculosis"},
	}}
	c, store := newTestController(&fakeGenerator{}, media)
	seedSession(store, "ana", topics.Pediculosis)

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "muéstrame una imagen de piojos"})
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if media.calls != 1 {
		t.Fatalf("lookup calls = %d", media.calls)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}
	ma, ok := actions[0].(MediaAction)
	if !ok {
		t.Fatalf("first action = %T, want MediaAction", actions[0])
	}
	if ma.PhotoURL != "https://img/2.png" || ma.Caption != "Pediculosis" || len(ma.Buttons) != 1 {
		t.Errorf("media action = %+v", ma)
	}
	// Incomplete cards degrade to their title as text.
	if got := text(t, actions[1]); got != "Pediculosis" {
		t.Errorf("degraded card = %q", got)
	}
}

func TestMediaRequestNoMatches(t *testing.T) {
	ctx := context.Background()
	media := &fakeMedia{cards: []Card{
		{Topic: topics.Parasitismo, PhotoURL: "https://img/1.png", Title: "Parasitismo", Buttons: []LinkButton{{Label: "Ver", URL: "https://x"}}},
	}}
	c, store := newTestController(&fakeGenerator{}, media)
	seedSession(store, "ana", topics.Pediculosis)

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "ver una imagen del contagio"})
	got := text(t, one(t, actions, err))
	if want := "No se encontraron imágenes para el tema pediculosis."; got != want {
		t.Errorf("no-match reply = %q", got)
	}
}

func TestGeneratorFailureRollsBackHistory(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: fmt.Errorf("%w: upstream 500", ErrCollaborator)}
	c, store := newTestController(gen, &fakeMedia{})
	seedSession(store, "ana", topics.Pediculosis)
	sess, _ := store.Get(userID)
	sess.Append(session.RoleUser, "primera pregunta sobre piojos")
	sess.Append(session.RoleAssistant, "primera respuesta")

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "¿y las liendres?"})
	got := text(t, one(t, actions, err))
	if got != textProcessingFailed {
		t.Errorf("failure reply = %q", got)
	}
	if len(sess.History) != 2 {
		t.Errorf("history len = %d, want 2 (rolled back)", len(sess.History))
	}
	if sess.AwaitingConfirmation {
		t.Error("failure set AwaitingConfirmation")
	}
}

func TestMediaFailureEmitsApology(t *testing.T) {
	ctx := context.Background()
	media := &fakeMedia{err: errors.New("detect intent: timeout")}
	c, store := newTestController(&fakeGenerator{}, media)
	seedSession(store, "ana", topics.Pediculosis)
	sess, _ := store.Get(userID)

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "muéstrame una imagen"})
	got := text(t, one(t, actions, err))
	if got != textProcessingFailed {
		t.Errorf("failure reply = %q", got)
	}
	if len(sess.History) != 0 {
		t.Errorf("media failure touched history: %d", len(sess.History))
	}
}

func TestOffTopicRefusal(t *testing.T) {
	ctx := context.Background()
	c, store := newTestController(&fakeGenerator{}, &fakeMedia{})
	seedSession(store, "ana", topics.Pediculosis)

	actions, err := c.HandleText(ctx, TextMessage{UserID: userID, Text: "quiero una pizza"})
	if got := text(t, one(t, actions, err)); got != textOffTopic {
		t.Errorf("refusal = %q", got)
	}
}

func TestSelectionWithoutSession(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(&fakeGenerator{}, &fakeMedia{})

	actions, err := c.HandleSelection(ctx, Selection{UserID: userID, Value: SelectConfirmLeave})
	if err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("got %d actions, want none", len(actions))
	}
}

func TestUnknownSelectionIsNoOp(t *testing.T) {
	ctx := context.Background()
	c, store := newTestController(&fakeGenerator{}, &fakeMedia{})
	seedSession(store, "ana", topics.Pediculosis)
	sess, _ := store.Get(userID)

	actions, err := c.HandleSelection(ctx, Selection{UserID: userID, Value: "algo_raro"})
	if err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("got %d actions, want none", len(actions))
	}
	if sess.Topic != topics.Pediculosis || sess.AwaitingConfirmation {
		t.Errorf("unknown selection mutated session: %+v", sess)
	}
}

func TestParseSelection(t *testing.T) {
	for _, raw := range []string{
		"pediculosis", "parasitismo",
		"volver_a_seleccionar", "continuar_con_el_mismo",
		"confirm_si", "confirm_no",
	} {
		if _, ok := ParseSelection(raw); !ok {
			t.Errorf("ParseSelection(%q) not recognized", raw)
		}
	}
	if _, ok := ParseSelection("start"); ok {
		t.Error("ParseSelection accepted unknown value")
	}
}

func seedSession(store *session.Store, name string, topic topics.Topic) {
	sess, _ := store.Create(userID)
	sess.Name = name
	sess.Topic = topic
}
