package domain

// User is the stable game identity of a participant. The owning connection
// is tracked by the session directory, not here, so domain identity stays
// decoupled from transport identity.
type User struct {
	ID    string `json:"id"`
	Team  string `json:"team"`
	Money int    `json:"money"`
}
