package domain

// ChangeAction classifies one entry of a change set.
type ChangeAction string

const (
	ActionCreate     ChangeAction = "create"
	ActionUpdate     ChangeAction = "update"
	ActionUnchanged  ChangeAction = "unchanged"
	ActionRemoteOnly ChangeAction = "remote_only"
	// ActionDelete entries are never produced by the differ; only the explicit
	// delete operation builds them.
	ActionDelete ChangeAction = "delete"
)

// FieldDelta records one field-level difference that triggered an update.
type FieldDelta struct {
	Field  string `json:"field"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Change is one entry of a change set: an action tag plus the local product
// and/or remote listing it refers to.
type Change struct {
	Action  ChangeAction
	Product *Product
	Listing *RemoteListing
	Deltas  []FieldDelta
}

// Handle returns the Shopify handle the change refers to, from whichever side
// is present.
func (c *Change) Handle() string {
	if c.Product != nil {
		return c.Product.Handle()
	}
	if c.Listing != nil {
		return c.Listing.Handle
	}
	return ""
}

// ChangeSet is the computed diff of one reconciliation run. It is consumed
// once by the scheduler and then discarded, never persisted.
type ChangeSet struct {
	Changes []Change
}

// Actionable returns the entries that require a Shopify mutation.
func (cs *ChangeSet) Actionable() []Change {
	out := make([]Change, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		switch c.Action {
		case ActionCreate, ActionUpdate, ActionDelete:
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of entries tagged with the given action.
func (cs *ChangeSet) Count(action ChangeAction) int {
	n := 0
	for _, c := range cs.Changes {
		if c.Action == action {
			n++
		}
	}
	return n
}
