package dialog

// TextMessage is an inbound free-text message from one user.
type TextMessage struct {
	UserID int64
	Text   string
}

// Selection is an inbound inline button press from one user.
type Selection struct {
	UserID int64
	Value  SelectionValue
}

// SelectionValue is the stable wire value carried by an inline button press.
type SelectionValue string

const (
	SelectPediculosis  SelectionValue = "pediculosis"
	SelectParasitismo  SelectionValue = "parasitismo"
	SelectChangeTopic  SelectionValue = "volver_a_seleccionar"
	SelectKeepTopic    SelectionValue = "continuar_con_el_mismo"
	SelectConfirmLeave SelectionValue = "confirm_si"
	SelectConfirmStay  SelectionValue = "confirm_no"
)

// ParseSelection maps a raw callback payload to a known selection value.
func ParseSelection(raw string) (SelectionValue, bool) {
	switch v := SelectionValue(raw); v {
	case SelectPediculosis, SelectParasitismo,
		SelectChangeTopic, SelectKeepTopic,
		SelectConfirmLeave, SelectConfirmStay:
		return v, true
	}
	return "", false
}
