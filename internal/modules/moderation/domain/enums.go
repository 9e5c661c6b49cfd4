//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Action is what the policy decided to do with a classified message
// ENUM(none,flag_only,mute)
type Action string

// Outcome is the terminal state of one pass through the pipeline
// ENUM(ignored_automated,ignored_guild,ignored_bypass,cooldown,classification_error,not_flagged,not_member,enforced,failed)
type Outcome string

// MemberRole is the role id a group member holds, derived from their
// membership status
// ENUM(creator=1,administrator,member,restricted)
type MemberRole int64
