package models

// User is a registered account. The credential is stored as a bcrypt
// hash; the reference system kept plaintext, which is deliberately not
// reproduced here.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// Profile is the sanitized view of a user handed to callers; it never
// carries the credential.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sanitize strips the credential for exposure outside the store.
func (u User) Sanitize() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
