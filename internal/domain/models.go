package domain

// Domain contains core models shared across the watcher.

// TrackedAccount is one entry in the account registry. ID is the durable
// identity once resolved; an empty ID means the account has not been looked
// up yet and must be resolved by username first. Username and Name drift as
// the account renames itself.
type TrackedAccount struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Name     string `json:"name" yaml:"name"`
}

// FollowRelation is one entry in a following list. Relations are identified
// by ID alone; Username and Name are display payload.
type FollowRelation struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Delta classifies the difference between two following-list snapshots.
// Unchanged includes relations whose username or name moved while the ID
// stayed put; renames are not newsworthy.
type Delta struct {
	Added     []FollowRelation
	Removed   []FollowRelation
	Unchanged []FollowRelation
}

// Empty reports whether the delta carries no follow or unfollow events.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Checkpoint marks scan progress within a cycle. When InProgress is true,
// every registry entry up to and including LastProcessed has been fully
// handled this cycle. The JSON keys match the on-disk record format.
type Checkpoint struct {
	InProgress    bool           `json:"continue"`
	LastProcessed TrackedAccount `json:"content"`
}
