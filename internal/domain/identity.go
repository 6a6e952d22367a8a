package domain

// Identity is the opaque wallet user handle scoping balance, transaction and intent queries.
type Identity string

// String implements fmt.Stringer.
func (id Identity) String() string { return string(id) }

// Tab is the active view section. It has no effect on synchronization.
type Tab string

const (
	TabHome         Tab = "home"
	TabSend         Tab = "send"
	TabCreateIntent Tab = "create-intent"
	TabHistory      Tab = "history"
)

// Tabs lists the tabs in navigation order.
func Tabs() []Tab {
	return []Tab{TabHome, TabSend, TabCreateIntent, TabHistory}
}

// Valid reports whether t is one of the known tabs.
func (t Tab) Valid() bool {
	switch t {
	case TabHome, TabSend, TabCreateIntent, TabHistory:
		return true
	}
	return false
}
