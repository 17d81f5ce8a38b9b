package domain

// Action enumerates the security-relevant outcomes recorded in the audit log
type Action string

const (
	ActionCreateUser     Action = "CREATE_USER"
	ActionDeleteUser     Action = "DELETE_USER"
	ActionChangePassword Action = "CHANGE_PASSWORD"
	ActionGrantRole      Action = "GRANT_ROLE"
	ActionRemoveRole     Action = "REMOVE_ROLE"
	ActionLockUser       Action = "LOCK_USER"
	ActionUnlockUser     Action = "UNLOCK_USER"
	ActionLoginFailed    Action = "LOGIN_FAILED"
	ActionAccessDenied   Action = "ACCESS_DENIED"
	ActionBruteForce     Action = "BRUTE_FORCE"
)

// SubjectAnonymous is the canonical audit subject for unauthenticated actors.
// It is stored as-is, not substituted at read time.
const SubjectAnonymous = "Anonymous"
