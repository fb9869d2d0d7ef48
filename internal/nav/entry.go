package nav

import "encoding/json"

// Kind discriminates the two menu entry shapes on the wire.
type Kind string

const (
	KindItem  Kind = "item"
	KindGroup Kind = "group"
)

// Entry is one element of the sidebar: either an Item or a Group.
// The set of implementations is closed; consumers switch on Kind() or on the concrete type.
type Entry interface {
	Kind() Kind
	entry()
}

// Item is a single clickable link.
type Item struct {
	Name string
	To   string
	Icon string // optional
}

// Group is an expandable section of Items. To is a placeholder route ("#").
type Group struct {
	Name  string
	To    string
	Icon  string
	Items []Item
}

func (Item) Kind() Kind  { return KindItem }
func (Group) Kind() Kind { return KindGroup }

func (Item) entry()  {}
func (Group) entry() {}

type itemJSON struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	To   string `json:"to"`
	Icon string `json:"icon,omitempty"`
}

type groupJSON struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	To    string `json:"to"`
	Icon  string `json:"icon,omitempty"`
	Items []Item `json:"items"`
}

// MarshalJSON always emits the kind discriminant.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{Kind: KindItem, Name: i.Name, To: i.To, Icon: i.Icon})
}

// MarshalJSON always emits the kind discriminant.
func (g Group) MarshalJSON() ([]byte, error) {
	items := g.Items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(groupJSON{Kind: KindGroup, Name: g.Name, To: g.To, Icon: g.Icon, Items: items})
}

// Menu is the ordered sidebar definition. Order is display order.
type Menu []Entry

// Names returns the top-level entry names in order.
func (m Menu) Names() []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		switch v := e.(type) {
		case Item:
			out = append(out, v.Name)
		case Group:
			out = append(out, v.Name)
		}
	}
	return out
}
