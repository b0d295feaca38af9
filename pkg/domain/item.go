package domain

// Identifiers of the content items shown on the explanation page, in reveal order.
const (
	ItemEscapeWindow      = "escape-window"
	ItemHeadline          = "headline"
	ItemCoreLogic         = "core-logic"
	ItemUserActions       = "user-actions"
	ItemRecentering       = "recentering"
	ItemActionTranslation = "action-translation"
)

// DefaultOrder is the reveal order of the explanation page.
var DefaultOrder = []string{
	ItemEscapeWindow,
	ItemHeadline,
	ItemCoreLogic,
	ItemUserActions,
	ItemRecentering,
	ItemActionTranslation,
}

// ItemState is the visibility of a single item.
type ItemState string

const (
	Hidden   ItemState = "hidden"
	Revealed ItemState = "revealed"
)

// Item is a content block with its position in the order and its current visibility.
type Item struct {
	ID       string    `json:"id"`
	Position int       `json:"position"`
	State    ItemState `json:"state"`
}
