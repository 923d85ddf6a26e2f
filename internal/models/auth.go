package models

// AuthResult is returned by login, register and refresh.
type AuthResult struct {
	User         *User  `json:"user,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AvatarResult is returned after an avatar upload.
type AvatarResult struct {
	Avatar string `json:"avatar"`
	User   *User  `json:"user,omitempty"`
}
