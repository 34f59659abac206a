package livekit

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// videoGrant LiveKit令牌的video权限段
type videoGrant struct {
	RoomCreate bool   `json:"roomCreate,omitempty"`
	RoomAdmin  bool   `json:"roomAdmin,omitempty"`
	RoomRecord bool   `json:"roomRecord,omitempty"`
	RoomJoin   bool   `json:"roomJoin,omitempty"`
	Room       string `json:"room,omitempty"`
}

// sipGrant LiveKit令牌的sip权限段
type sipGrant struct {
	Admin bool `json:"admin,omitempty"`
	Call  bool `json:"call,omitempty"`
}

// claims LiveKit的JWT负载: iss是api key, sub是参与者identity
type claims struct {
	jwt.RegisteredClaims
	Name  string      `json:"name,omitempty"`
	Video *videoGrant `json:"video,omitempty"`
	SIP   *sipGrant   `json:"sip,omitempty"`
}

// token 用api secret做HS256签名
func (app *LkApp) token(identity, name string, video *videoGrant, sip *sipGrant, ttl time.Duration) (string, error) {
	now := time.Now()
	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    app.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  name,
		Video: video,
		SIP:   sip,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(app.apiSecret))
}
