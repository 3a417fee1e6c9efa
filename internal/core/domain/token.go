package domain

import "time"

// Claims is the verified payload of an access or refresh token.
type Claims struct {
	Subject   string
	Role      string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is what a successful register, login or refresh hands back.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the result of a credential-accepting operation.
type Session struct {
	User   PublicUser
	Tokens TokenPair
}
