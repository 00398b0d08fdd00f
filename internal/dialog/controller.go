package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"saludbot/core/logger"
	"saludbot/internal/session"
	"saludbot/internal/textnorm"
	"saludbot/internal/topics"
)

// ErrCollaborator marks failures of an external collaborator (reply generation
// or media lookup). The controller recovers from them with a generic apology.
var ErrCollaborator = errors.New("dialog: collaborator failure")

// User-facing texts. Spanish is the bot's only language.
const (
	textAskName = "Hola🖐️, ¿cómo estás? ¿Cuál es tu nombre?"

	textPickFromMenu = "Por favor, selecciona una opción del menú."

	textConfirmLeave = "¿Fue clara la información o necesitas algo más?"

	textConfirmReprompt = "Por favor, selecciona una de las opciones propuestas."

	textOffTopic = "Este chat está diseñado para responder preguntas sobre pediculosis y parasitismo. " +
		"Por favor, formula una pregunta relacionada con estos temas."

	textFarewell = "Me alegra saber que todo ha sido claro. ¡Hasta luego!"

	textHowElse = "Por favor, dime en qué más puedo ayudarte."

	textProcessingFailed = "Lo siento, no pude procesar tu mensaje. Inténtalo de nuevo."
)

const (
	defaultGenerateTimeout = 30 * time.Second
	defaultLookupTimeout   = 10 * time.Second
)

// Controller drives the per-user dialogue state machine. All transitions for a
// given user run serialized through the session store; actions are returned in
// send order and must be delivered in that order.
type Controller struct {
	sessions *session.Store
	gen      Generator
	media    MediaSource

	generateTimeout time.Duration
	lookupTimeout   time.Duration
}

// New builds a Controller. Zero timeouts fall back to defaults.
func New(sessions *session.Store, gen Generator, media MediaSource, generateTimeout, lookupTimeout time.Duration) *Controller {
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Controller{
		sessions:        sessions,
		gen:             gen,
		media:           media,
		generateTimeout: generateTimeout,
		lookupTimeout:   lookupTimeout,
	}
}

// HandleText processes one free-text message and returns the outbound actions.
// Collaborator failures are absorbed: the user gets an apology, state is left
// untouched and the returned error is nil.
func (c *Controller) HandleText(ctx context.Context, msg TextMessage) ([]Action, error) {
	var actions []Action
	err := c.sessions.Transition(msg.UserID, func() error {
		actions = c.handleText(ctx, msg)
		return nil
	})
	return actions, err
}

func (c *Controller) handleText(ctx context.Context, msg TextMessage) []Action {
	sess, ok := c.sessions.Get(msg.UserID)
	if !ok {
		if _, err := c.sessions.Create(msg.UserID); err != nil {
			logger.LogEvent(ctx, logger.Dialog, slog.LevelError, "session.create_failed",
				slog.Int64("user_id", msg.UserID),
				slog.String("err", err.Error()))
			return []Action{TextAction{Text: textProcessingFailed}}
		}
		logger.LogEvent(ctx, logger.Sessions, slog.LevelInfo, "session.created",
			slog.Int64("user_id", msg.UserID),
			slog.Int("sessions", c.sessions.Len()))
		return []Action{TextAction{Text: textAskName}}
	}

	if sess.Name == "" {
		sess.Name = strings.ToLower(strings.TrimSpace(msg.Text))
		return []Action{topicMenu(sess.Name)}
	}

	if sess.Topic == "" {
		return []Action{TextAction{Text: textPickFromMenu}}
	}

	switch {
	case topics.WantsMedia(msg.Text):
		return c.handleMediaRequest(ctx, msg, sess)

	case topics.RelatedTo(msg.Text, sess.Topic):
		return c.handleQuestion(ctx, msg, sess)

	default:
		if other, ok := topics.OtherTopic(msg.Text, sess.Topic); ok {
			return []Action{driftMenu(other, sess.Topic)}
		}
		if topics.IsFarewell(msg.Text) {
			sess.AwaitingConfirmation = true
			return []Action{confirmMenu(textConfirmLeave)}
		}
		if sess.AwaitingConfirmation {
			return []Action{confirmMenu(textConfirmReprompt)}
		}
		logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "dialog.off_topic",
			slog.Int64("user_id", msg.UserID),
			slog.String("topic", string(sess.Topic)))
		return []Action{TextAction{Text: textOffTopic}}
	}
}

// handleMediaRequest resolves a media trigger against the lookup collaborator
// and keeps only cards tagged with the session's current topic.
func (c *Controller) handleMediaRequest(ctx context.Context, msg TextMessage, sess *session.Session) []Action {
	lctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	start := time.Now()
	cards, err := c.media.Lookup(lctx, msg.Text)
	if err != nil {
		logger.LogEvent(ctx, logger.Dialog, slog.LevelWarn, "media.lookup_failed",
			slog.Int64("user_id", msg.UserID),
			slog.String("topic", string(sess.Topic)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()))
		return []Action{TextAction{Text: textProcessingFailed}}
	}

	var actions []Action
	for _, card := range cards {
		if !strings.EqualFold(string(card.Topic), string(sess.Topic)) {
			continue
		}
		if card.PhotoURL != "" && card.Title != "" && len(card.Buttons) > 0 {
			actions = append(actions, MediaAction{
				PhotoURL: card.PhotoURL,
				Caption:  card.Title,
				Buttons:  card.Buttons,
			})
		} else {
			actions = append(actions, TextAction{Text: card.Title})
		}
	}
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "media.lookup",
		slog.Int64("user_id", msg.UserID),
		slog.String("topic", string(sess.Topic)),
		slog.Int("cards", len(actions)),
		slog.Duration("duration", logger.Took(start)))
	if len(actions) == 0 {
		return []Action{TextAction{Text: fmt.Sprintf("No se encontraron imágenes para el tema %s.", sess.Topic)}}
	}
	return actions
}

// handleQuestion feeds the accumulated history to the generator. On failure
// the just-appended user turn is rolled back so history stays consistent.
func (c *Controller) handleQuestion(ctx context.Context, msg TextMessage, sess *session.Session) []Action {
	sess.Append(session.RoleUser, msg.Text)

	gctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	start := time.Now()
	reply, err := c.gen.Generate(gctx, sess.History)
	if err != nil {
		sess.DropLast()
		logger.LogEvent(ctx, logger.Dialog, slog.LevelWarn, "generation.failed",
			slog.Int64("user_id", msg.UserID),
			slog.String("topic", string(sess.Topic)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()))
		return []Action{TextAction{Text: textProcessingFailed}}
	}

	sess.Append(session.RoleAssistant, reply)
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "generation.reply",
		slog.Int64("user_id", msg.UserID),
		slog.String("topic", string(sess.Topic)),
		slog.Int("history_len", len(sess.History)),
		slog.Duration("duration", logger.Took(start)))
	return []Action{TextAction{Text: reply}}
}

// HandleSelection processes one inline button press. Presses from users with
// no session and values outside the known set are ignored.
func (c *Controller) HandleSelection(ctx context.Context, sel Selection) ([]Action, error) {
	var actions []Action
	err := c.sessions.Transition(sel.UserID, func() error {
		actions = c.handleSelection(ctx, sel)
		return nil
	})
	return actions, err
}

func (c *Controller) handleSelection(ctx context.Context, sel Selection) []Action {
	sess, ok := c.sessions.Get(sel.UserID)
	if !ok {
		logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "selection.no_session",
			slog.Int64("user_id", sel.UserID),
			slog.String("cb_key", string(sel.Value)))
		return nil
	}

	switch sel.Value {
	case SelectChangeTopic:
		sess.Topic = ""
		return []Action{topicMenu(sess.Name)}

	case SelectKeepTopic:
		return []Action{TextAction{
			Text: fmt.Sprintf("Por favor, continúa formulando preguntas sobre %s.",
				textnorm.CapitalizeFirst(string(sess.Topic))),
		}}

	case SelectConfirmLeave:
		c.sessions.Remove(sel.UserID)
		logger.LogEvent(ctx, logger.Sessions, slog.LevelInfo, "session.removed",
			slog.Int64("user_id", sel.UserID),
			slog.Int("sessions", c.sessions.Len()))
		return []Action{TextAction{Text: textFarewell}}

	case SelectConfirmStay:
		sess.AwaitingConfirmation = false
		return []Action{TextAction{Text: textHowElse}}
	}

	if topic, ok := topics.Parse(string(sel.Value)); ok {
		sess.Topic = topic
		logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "dialog.topic_selected",
			slog.Int64("user_id", sel.UserID),
			slog.String("topic", string(topic)))
		return []Action{TextAction{
			Text: fmt.Sprintf("%s, has seleccionado %s. ¿En qué puedo ayudarte?🤝",
				textnorm.CapitalizeFirst(sess.Name), topic),
		}}
	}

	logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "selection.unknown",
		slog.Int64("user_id", sel.UserID),
		slog.String("cb_key", string(sel.Value)))
	return nil
}

func topicMenu(name string) MenuAction {
	return MenuAction{
		Text: fmt.Sprintf("Hola 🙋‍♂️ %s, bienvenido a Pediculosis y Parasitismo Bot🤖. Escoge una de las siguientes opciones:",
			textnorm.CapitalizeFirst(name)),
		Options: []Option{
			{Label: topics.Pediculosis.Title(), Value: SelectPediculosis},
			{Label: topics.Parasitismo.Title(), Value: SelectParasitismo},
		},
	}
}

func driftMenu(other, current topics.Topic) MenuAction {
	return MenuAction{
		Text: fmt.Sprintf("Parece que tu pregunta está relacionada con %s. "+
			"Sin embargo, seleccionaste el tema %s. "+
			"Por favor, selecciona el tema correcto o formula una pregunta sobre %s.",
			other, current, current),
		Options: []Option{
			{Label: "Volver a seleccionar tema", Value: SelectChangeTopic},
			{Label: fmt.Sprintf("Seguir con %s", textnorm.CapitalizeFirst(string(current))), Value: SelectKeepTopic},
		},
	}
}

func confirmMenu(text string) MenuAction {
	return MenuAction{
		Text: text,
		Options: []Option{
			{Label: "SI, Terminar", Value: SelectConfirmLeave},
			{Label: "NO, Continuar", Value: SelectConfirmStay},
		},
	}
}
