package model

// SessionPayload は署名付きトークンに埋め込む認証済みユーザーの投影。
// 検証済みのUserAccountからのみ生成され、クライアント入力から直接作られることはない。
type SessionPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAdmin はセッションが管理者権限を持つかを返す。
func (p *SessionPayload) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
