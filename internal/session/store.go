// Package session はセッショントークンのCookieによる運搬を管理する。
package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/staffman/internal/model"
	"github.com/hitoshi/staffman/internal/token"
)

// CookieName はセッショントークンを保持するCookieの名前。
const CookieName = "session"

// Config はCookie属性の設定。
type Config struct {
	Secure bool   // 本番環境（https）ではtrue
	Domain string // 空文字の場合はホストオンリーCookie
}

// Store は1リクエスト単位のセッションライフサイクルを管理する。
// トークンのエンコード/デコードはCodecに委譲し、自身はCookieの読み書きのみを行う。
type Store struct {
	codec  *token.Codec
	config Config
}

// NewStore はStoreを生成する。
func NewStore(codec *token.Codec, config Config) *Store {
	return &Store{codec: codec, config: config}
}

// Create はペイロードを署名付きトークンにして、HTTP Only Cookieとして設定する。
// Cookieの有効期限はトークンの有効期限と一致させる。
func (s *Store) Create(w http.ResponseWriter, payload *model.SessionPayload) error {
	tok, err := s.codec.Encode(payload)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		Domain:   s.config.Domain,
		Expires:  time.Now().Add(s.codec.TTL()),
		MaxAge:   int(s.codec.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read はリクエストのCookieからセッションペイロードを取得する。
// Cookieが存在しない場合もトークン検証に失敗した場合もnilを返し、原因を区別しない。
func (s *Store) Read(r *http.Request) *model.SessionPayload {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	payload, err := s.codec.Decode(cookie.Value)
	if err != nil {
		// 期限切れと改ざんを区別せず「セッションなし」として扱う
		slog.Debug("session token rejected", slog.String("path", r.URL.Path))
		return nil
	}
	return payload
}

// Destroy はセッションCookieを空値・期限切れで上書きする。
// セッションが存在しない状態で呼んでも成功する（冪等）。
func (s *Store) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
